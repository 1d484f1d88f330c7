package handler

import (
	"execpanel/dto"
	"execpanel/model"
	"execpanel/usecase"
	"execpanel/utils"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	service *usecase.HistoryService
}

func NewHistoryHandler(service *usecase.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

func (h *HistoryHandler) ListHistory(c *gin.Context) {
	utils.Success(c, h.service.List())
}

// AttachSelfCompare records the one-shot self-comparison on a success
// record. Fail records, unknown ids and repeat writes are rejected.
func (h *HistoryHandler) AttachSelfCompare(c *gin.Context) {
	recordID := c.Param("id")
	if recordID == "" {
		utils.BadRequest(c, "Missing record ID")
		return
	}

	var req dto.SelfCompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if !h.service.AttachSelfCompare(c.Request.Context(), recordID, model.SelfCompare(req.SelfCompare)) {
		utils.Conflict(c, "Record is not an unrated success record")
		return
	}
	utils.Success(c, gin.H{"recorded": true})
}
