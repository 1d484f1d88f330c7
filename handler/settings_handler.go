package handler

import (
	"execpanel/dto"
	"execpanel/model"
	"execpanel/usecase"
	"execpanel/utils"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	service *usecase.SettingsService
	session *usecase.SessionService
}

func NewSettingsHandler(service *usecase.SettingsService, session *usecase.SessionService) *SettingsHandler {
	return &SettingsHandler{service: service, session: session}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	utils.Success(c, h.service.Get())
}

func (h *SettingsHandler) GetStats(c *gin.Context) {
	utils.Success(c, h.service.Stats())
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	settings := model.Settings{
		DefaultEstimateMin: req.DefaultEstimateMin,
		CompletePoints:     req.CompletePoints,
		FailPoints:         req.FailPoints,
		StreakResetOnFail:  req.StreakResetOnFail,
	}
	if err := h.service.Update(c.Request.Context(), settings); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.Success(c, settings)
}

// ClearData wipes everything and restores the defaults. A session in
// flight is aborted without producing a history record.
func (h *SettingsHandler) ClearData(c *gin.Context) {
	var req dto.ClearDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Confirmation is required")
		return
	}

	h.session.Reset()
	if err := h.service.ClearAll(c.Request.Context()); err != nil {
		utils.InternalError(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"cleared": true})
}
