package handler

import (
	"strings"

	"execpanel/dto"
	"execpanel/usecase"
	"execpanel/utils"

	"github.com/gin-gonic/gin"
)

type SopHandler struct {
	service *usecase.SopService
}

func NewSopHandler(service *usecase.SopService) *SopHandler {
	return &SopHandler{service: service}
}

func (h *SopHandler) ListSops(c *gin.Context) {
	utils.Success(c, gin.H{"keys": h.service.Keys()})
}

// GetSop resolves the SOP for a key, optionally falling back to a task
// title the same way session start does.
func (h *SopHandler) GetSop(c *gin.Context) {
	key := usecase.ResolveSopKey(c.Param("key"), c.Query("title"))
	if key == "" {
		utils.BadRequest(c, "Missing SOP key")
		return
	}
	utils.Success(c, gin.H{"key": key, "steps": h.service.Get(key)})
}

func (h *SopHandler) PutSop(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		utils.BadRequest(c, "Missing SOP key")
		return
	}

	var req dto.PutSopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.service.Put(c.Request.Context(), key, req.Steps); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"key": key, "steps": h.service.Get(key)})
}

// RenameSop moves the steps to a new key. The old entry is deleted,
// not merged.
func (h *SopHandler) RenameSop(c *gin.Context) {
	oldKey := strings.TrimSpace(c.Param("key"))
	if oldKey == "" {
		utils.BadRequest(c, "Missing SOP key")
		return
	}

	var req dto.RenameSopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	steps := req.Steps
	if steps == nil {
		steps = h.service.Get(oldKey)
	}
	if err := h.service.Rename(c.Request.Context(), oldKey, req.NewKey, steps); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"key": strings.TrimSpace(req.NewKey)})
}

func (h *SopHandler) DeleteSop(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		utils.BadRequest(c, "Missing SOP key")
		return
	}

	if err := h.service.Delete(c.Request.Context(), key); err != nil {
		utils.NotFound(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"deleted": key})
}

// CopySop pushes the steps to the clipboard collaborator and echoes
// the blob that was copied.
func (h *SopHandler) CopySop(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		utils.BadRequest(c, "Missing SOP key")
		return
	}

	blob, err := h.service.CopySteps(key)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"copied": blob})
}
