package handler

import (
	"strconv"
	"strings"

	"execpanel/dto"
	"execpanel/middleware"
	"execpanel/model"
	"execpanel/usecase"
	"execpanel/utils"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	service *usecase.TasksService
}

func NewTaskHandler(service *usecase.TasksService) *TaskHandler {
	return &TaskHandler{service: service}
}

// ListTasks returns the todo queue in execution order plus recently
// finished tasks, so one call renders the whole panel.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	doneLimit := 30
	if raw := c.Query("doneLimit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.BadRequest(c, "Invalid doneLimit")
			return
		}
		doneLimit = n
	}

	utils.Success(c, gin.H{
		"todos":      h.service.SortedTodos(),
		"recentDone": h.service.RecentDone(doneLimit),
	})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task := model.Task{
		Title:            req.Title,
		Type:             model.TaskType(req.Type),
		EstimateMin:      req.EstimateMin,
		Importance:       model.Importance(req.Importance),
		Links:            req.Links,
		DefinitionOfDone: strings.TrimSpace(req.DefinitionOfDone),
		SopKey:           strings.TrimSpace(req.SopKey),
	}
	if err := h.service.Create(c.Request.Context(), &task); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	middleware.TrackTaskOperation("create")
	utils.Created(c, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		utils.BadRequest(c, "Missing task ID")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, ok := h.service.Get(taskID)
	if !ok {
		utils.NotFound(c, "Task not found")
		return
	}

	if strings.TrimSpace(req.Title) != "" {
		task.Title = strings.TrimSpace(req.Title)
	}
	if req.Type != "" {
		task.Type = model.TaskType(req.Type)
	}
	if req.EstimateMin >= 1 {
		task.EstimateMin = req.EstimateMin
	}
	if req.Importance != "" {
		task.Importance = model.Importance(req.Importance)
	}
	if req.Links != nil {
		task.Links = req.Links
	}
	if req.DefinitionOfDone != nil {
		task.DefinitionOfDone = strings.TrimSpace(*req.DefinitionOfDone)
	}
	if req.SopKey != nil {
		task.SopKey = strings.TrimSpace(*req.SopKey)
	}
	task.UpdatedAt = model.NowISO()

	if err := h.service.Upsert(c.Request.Context(), task); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	middleware.TrackTaskOperation("update")
	utils.Success(c, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		utils.BadRequest(c, "Missing task ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), taskID); err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	middleware.TrackTaskOperation("delete")
	utils.Success(c, gin.H{"deleted": taskID})
}

// RecommendedTask returns the single task the queue policy puts first,
// or an empty body when there is nothing to do.
func (h *TaskHandler) RecommendedTask(c *gin.Context) {
	task, ok := h.service.Recommend()
	if !ok {
		utils.Success(c, nil)
		return
	}
	utils.Success(c, task)
}

func (h *TaskHandler) SkipTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		utils.BadRequest(c, "Missing task ID")
		return
	}

	if err := h.service.Skip(c.Request.Context(), taskID); err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	middleware.TrackTaskOperation("skip")
	utils.Success(c, gin.H{"skipped": taskID})
}

// CopyLinks pushes the task's links to the clipboard as one blob.
func (h *TaskHandler) CopyLinks(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		utils.BadRequest(c, "Missing task ID")
		return
	}

	blob, err := h.service.CopyLinks(taskID)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"copied": blob})
}

func (h *TaskHandler) AddNote(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		utils.BadRequest(c, "Missing task ID")
		return
	}

	var req dto.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	note, err := h.service.AddNote(c.Request.Context(), taskID, req.Text)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFound(c, err.Error())
			return
		}
		utils.BadRequest(c, err.Error())
		return
	}

	utils.Created(c, note)
}

func (h *TaskHandler) SaveNoteDraft(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		utils.BadRequest(c, "Missing task ID")
		return
	}

	var req dto.NoteDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.service.SaveNoteDraft(c.Request.Context(), taskID, req.Draft); err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.Success(c, gin.H{"saved": true})
}
