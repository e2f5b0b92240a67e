package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/dto"
	apierrors "github.com/riverkeep/river-ops/internal/errors"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/middleware"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
	urlFor      dto.URLFunc
	log         logger.Logger
}

func NewTaskHandler(taskService *services.TaskService, urlFor dto.URLFunc, log logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		urlFor:      urlFor,
		log:         log.Module("tasks"),
	}
}

type taskRequest struct {
	Date         string              `json:"date"`
	SectionID    *uint64             `json:"section_id"`
	AssigneeType models.AssigneeType `json:"assignee_type"`
	Instructions string              `json:"instructions"`
	TemplateID   *uint64             `json:"template_id"`
	IsCompleted  bool                `json:"is_completed"`
}

func (r taskRequest) input() (services.TaskInput, error) {
	verr := &services.ValidationError{}
	date := parseDateField(verr, "date", r.Date)
	if err := verr.Err(); err != nil {
		return services.TaskInput{}, err
	}
	return services.TaskInput{
		Date:         date,
		SectionID:    r.SectionID,
		AssigneeType: r.AssigneeType,
		Instructions: r.Instructions,
		TemplateID:   r.TemplateID,
		IsCompleted:  r.IsCompleted,
	}, nil
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by LoadTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task. A template fills blank instructions.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := req.input()
	if err != nil {
		h.respondError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask replaces an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := req.input()
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.taskService.UpdateTask(task.ID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(task.ID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// CompleteTask marks a task done and logs a visit for today.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	visit, err := h.taskService.CompleteTask(task.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"visit":  dto.ToVisitDTO(*visit, h.urlFor),
	})
}

// DraftTasks proposes tasks from free text. Nothing is saved.
func (h *TaskHandler) DraftTasks(c *gin.Context) {
	type DraftTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req DraftTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.DraftTasks(c.Request.Context(), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(drafts),
	})
}

func (h *TaskHandler) respondError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskHasNoSection):
		apierrors.Rejected(c, apierrors.ErrCodeTaskHasNoSection, "Task has no section, log the visit manually")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.Rejected(c, apierrors.ErrCodeDraftFailed, err.Error())
	default:
		h.log.WithContext(c.Request.Context()).Error("task request failed", logger.Error(err))
		apierrors.InternalError(c, "Internal server error")
	}
}
