package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/dto"
	apierrors "github.com/riverkeep/river-ops/internal/errors"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/services"
)

type SectionHandler struct {
	sections *services.SectionService
	urlFor   dto.URLFunc
	log      logger.Logger
}

func NewSectionHandler(sections *services.SectionService, urlFor dto.URLFunc, log logger.Logger) *SectionHandler {
	return &SectionHandler{sections: sections, urlFor: urlFor, log: log.Module("sections")}
}

type sectionRequest struct {
	Name         string          `json:"name"`
	ColorCode    string          `json:"color_code"`
	CurrentStage models.Stage    `json:"current_stage"`
	Priority     models.Priority `json:"priority"`
	Description  string          `json:"description"`
	Position     *uint           `json:"position"`
	BoundaryData json.RawMessage `json:"boundary_data"`
	CenterPoint  json.RawMessage `json:"center_point"`
}

func (r sectionRequest) input() services.SectionInput {
	return services.SectionInput{
		Name:         r.Name,
		ColorCode:    r.ColorCode,
		CurrentStage: r.CurrentStage,
		Priority:     r.Priority,
		Description:  r.Description,
		Position:     r.Position,
		BoundaryData: r.BoundaryData,
		CenterPoint:  r.CenterPoint,
	}
}

// ListSections returns every section in manual order with its map geometry.
func (h *SectionHandler) ListSections(c *gin.Context) {
	sections, err := h.sections.List()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": dto.ToSectionDTOs(sections)})
}

// GetSection returns the section page: totals, weeding summary, timeline and tasks.
func (h *SectionHandler) GetSection(c *gin.Context) {
	id, ok := paramID(c, "id", "section")
	if !ok {
		return
	}

	detail, err := h.sections.Detail(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSectionDetailDTO(detail, h.urlFor))
}

func (h *SectionHandler) CreateSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	section, err := h.sections.CreateSection(req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToSectionDTO(*section))
}

func (h *SectionHandler) UpdateSection(c *gin.Context) {
	id, ok := paramID(c, "id", "section")
	if !ok {
		return
	}

	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	section, err := h.sections.UpdateSection(id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSectionDTO(*section))
}

func (h *SectionHandler) DeleteSection(c *gin.Context) {
	id, ok := paramID(c, "id", "section")
	if !ok {
		return
	}

	if err := h.sections.DeleteSection(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Section deleted successfully"})
}

// ReorderSections applies a drag-and-drop order: {"order": [3, 1, 2]}.
func (h *SectionHandler) ReorderSections(c *gin.Context) {
	type ReorderRequest struct {
		Order []uint64 `json:"order" binding:"required"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.sections.Reorder(req.Order); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *SectionHandler) respondError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrSectionNotFound):
		apierrors.NotFound(c, "Section not found")
	case errors.Is(err, services.ErrSectionNameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidSectionOrder):
		apierrors.Rejected(c, apierrors.ErrCodeInvalidSectionOrder, err.Error())
	default:
		h.log.WithContext(c.Request.Context()).Error("section request failed", logger.Error(err))
		apierrors.InternalError(c, "Internal server error")
	}
}
