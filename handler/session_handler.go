package handler

import (
	"errors"

	"execpanel/dto"
	"execpanel/middleware"
	"execpanel/model"
	"execpanel/usecase"
	"execpanel/utils"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	service *usecase.SessionService
	history *usecase.HistoryService
	sops    *usecase.SopService
}

func NewSessionHandler(service *usecase.SessionService, history *usecase.HistoryService, sops *usecase.SopService) *SessionHandler {
	return &SessionHandler{service: service, history: history, sops: sops}
}

func (h *SessionHandler) Status(c *gin.Context) {
	utils.Success(c, h.service.Status())
}

// StartSession begins a focus session. A missing or already-done task
// is reported as started:false rather than an error; a session already
// in flight (or an unresolved fail reason) is a conflict.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	started, err := h.service.Start(c.Request.Context(), req.TaskID, usecase.StartOptions{
		EstimateMin:      req.EstimateMin,
		DefinitionOfDone: req.DefinitionOfDone,
		SopKey:           req.SopKey,
		PracticeFocus:    req.PracticeFocus,
		OpenLinks:        req.OpenLinks,
		UseSop:           req.UseSop,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrSessionActive) {
			utils.Conflict(c, err.Error())
			return
		}
		utils.InternalError(c, err.Error())
		return
	}
	if !started {
		utils.Success(c, gin.H{"started": false})
		return
	}

	middleware.SetSessionActive(true)
	utils.Success(c, gin.H{"started": true, "status": h.service.Status()})
}

// CompleteSession settles the session as a success, then applies the
// optional follow-ups: a self-comparison on the fresh record and an
// updated SOP under the session's key. Either may be skipped.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	var req dto.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.service.Complete(c.Request.Context(), req.SaveDraftAsNote)
	if err != nil {
		if errors.Is(err, usecase.ErrNoActiveSession) {
			utils.Conflict(c, err.Error())
			return
		}
		utils.InternalError(c, err.Error())
		return
	}

	middleware.SetSessionActive(false)
	middleware.TrackSessionSettled(string(rec.Result), "")

	if req.SelfCompare != "" {
		if h.history.AttachSelfCompare(c.Request.Context(), rec.ID, model.SelfCompare(req.SelfCompare)) {
			rec.SelfCompare = model.SelfCompare(req.SelfCompare)
		}
	}
	if req.SaveSop && rec.SopKey != "" {
		if err := h.sops.Put(c.Request.Context(), rec.SopKey, req.SopSteps); err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}

	utils.Success(c, rec)
}

// AbandonSession gives up on the running session. Without a fail
// reason the machine parks in settling and the caller owes a reason
// via ResolveFailReason.
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	var req dto.AbandonSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.service.Abandon(c.Request.Context(), model.FailReason(req.FailReason))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoActiveSession):
			utils.Conflict(c, err.Error())
		case errors.Is(err, usecase.ErrInvalidFailReason):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalError(c, err.Error())
		}
		return
	}

	if rec == nil {
		utils.Success(c, gin.H{"settling": true, "status": h.service.Status()})
		return
	}

	middleware.SetSessionActive(false)
	middleware.TrackSessionSettled(string(rec.Result), string(rec.FailTrigger))
	utils.Success(c, rec)
}

// ResolveFailReason settles a parked abandon or timeout with the
// mandatory fail reason.
func (h *SessionHandler) ResolveFailReason(c *gin.Context) {
	var req dto.FailReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.service.ResolveFailReason(c.Request.Context(), model.FailReason(req.FailReason))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotSettling):
			utils.Conflict(c, err.Error())
		case errors.Is(err, usecase.ErrInvalidFailReason):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalError(c, err.Error())
		}
		return
	}

	middleware.SetSessionActive(false)
	middleware.TrackSessionSettled(string(rec.Result), string(rec.FailTrigger))
	utils.Success(c, rec)
}
