package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/dto"
	apierrors "github.com/riverkeep/river-ops/internal/errors"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/services"
)

type TemplateHandler struct {
	templates *services.TemplateService
	log       logger.Logger
}

func NewTemplateHandler(templates *services.TemplateService, log logger.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, log: log.Module("templates")}
}

type templateRequest struct {
	Name                string              `json:"name"`
	TaskType            models.TaskType     `json:"task_type"`
	AssigneeType        models.AssigneeType `json:"assignee_type"`
	DefaultInstructions string              `json:"default_instructions"`
}

func (r templateRequest) input() services.TemplateInput {
	return services.TemplateInput{
		Name:                r.Name,
		TaskType:            r.TaskType,
		AssigneeType:        r.AssigneeType,
		DefaultInstructions: r.DefaultInstructions,
	}
}

// ListTemplates returns every template, active first. With ?active=true only
// active templates are returned, optionally narrowed by ?assignee_type=.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	var (
		templates []models.TaskTemplate
		err       error
	)
	if c.Query("active") == "true" {
		var assignee *models.AssigneeType
		if a := models.AssigneeType(c.Query("assignee_type")); a.Valid() {
			assignee = &a
		}
		templates, err = h.templates.ActiveTemplates(assignee)
	} else {
		templates, err = h.templates.ListTemplates()
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": dto.ToTemplateDTOs(templates)})
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	template, err := h.templates.CreateTemplate(req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTemplateDTO(*template))
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := paramID(c, "id", "template")
	if !ok {
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	template, err := h.templates.UpdateTemplate(id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTemplateDTO(*template))
}

// RetireTemplate handles DELETE; the template is deactivated, not removed.
func (h *TemplateHandler) RetireTemplate(c *gin.Context) {
	id, ok := paramID(c, "id", "template")
	if !ok {
		return
	}

	template, err := h.templates.RetireTemplate(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTemplateDTO(*template))
}

func (h *TemplateHandler) respondError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		apierrors.NotFound(c, "Template not found")
	default:
		h.log.WithContext(c.Request.Context()).Error("template request failed", logger.Error(err))
		apierrors.InternalError(c, "Internal server error")
	}
}
