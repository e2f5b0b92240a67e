package dto

import (
	"time"

	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/services"
	"github.com/riverkeep/river-ops/internal/utils"
)

// URLFunc maps a stored blob key to its public URL.
type URLFunc func(key string) string

type MetricDTO struct {
	ID         uint64            `json:"id"`
	MetricType models.MetricType `json:"metric_type"`
	Label      string            `json:"label"`
	Value      int64             `json:"value"`
}

type PhotoDTO struct {
	ID          uint64    `json:"id"`
	URL         string    `json:"url"`
	SectionID   uint64    `json:"section_id"`
	VisitID     *uint64   `json:"visit_id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// VisitDTO represents a visit log in API responses
type VisitDTO struct {
	ID        uint64             `json:"id"`
	Date      string             `json:"date"`
	SectionID uint64             `json:"section_id"`
	Section   *SectionSummaryDTO `json:"section,omitempty"`
	TaskID    *uint64            `json:"task_id"`
	TaskType  string             `json:"task_type"`
	Notes     string             `json:"notes"`
	Metrics   []MetricDTO        `json:"metrics"`
	Photos    []PhotoDTO         `json:"photos"`
	CreatedAt time.Time          `json:"created_at"`
}

// VisitListResponse represents a paginated list of visits
type VisitListResponse struct {
	Visits     []VisitDTO               `json:"visits"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// VisitPrefillDTO is the starting state of the visit form.
type VisitPrefillDTO struct {
	TaskID       *uint64 `json:"task_id"`
	SectionID    *uint64 `json:"section_id"`
	Date         string  `json:"date"`
	Notes        string  `json:"notes"`
	TaskType     string  `json:"task_type"`
	TemplateName string  `json:"template_name,omitempty"`
}

func ToPhotoDTO(p models.Photo, urlFor URLFunc) PhotoDTO {
	return PhotoDTO{
		ID:          p.ID,
		URL:         urlFor(p.File),
		SectionID:   p.SectionID,
		VisitID:     p.VisitID,
		Description: p.Description,
		Timestamp:   p.Timestamp,
	}
}

func ToPhotoDTOs(photos []models.Photo, urlFor URLFunc) []PhotoDTO {
	out := make([]PhotoDTO, len(photos))
	for i, p := range photos {
		out[i] = ToPhotoDTO(p, urlFor)
	}
	return out
}

// PlannedTaskType labels a visit logged against a task that has no template.
const PlannedTaskType = "planned"

// ToVisitDTO converts a VisitLog model to VisitDTO
func ToVisitDTO(v models.VisitLog, urlFor URLFunc) VisitDTO {
	dto := VisitDTO{
		ID:        v.ID,
		Date:      calendar.Key(v.Date),
		SectionID: v.SectionID,
		TaskID:    v.TaskID,
		TaskType:  "unplanned",
		Notes:     v.Notes,
		Metrics:   make([]MetricDTO, len(v.Metrics)),
		Photos:    ToPhotoDTOs(v.Photos, urlFor),
		CreatedAt: v.CreatedAt,
	}
	for i, m := range v.Metrics {
		dto.Metrics[i] = MetricDTO{ID: m.ID, MetricType: m.MetricType, Label: m.Label, Value: m.Value}
	}

	if v.Section != nil {
		section := ToSectionSummaryDTO(*v.Section)
		dto.Section = &section
	}
	if v.TaskID != nil {
		dto.TaskType = PlannedTaskType
		if v.Task != nil && v.Task.Template != nil {
			dto.TaskType = string(v.Task.Template.TaskType)
		}
	}
	return dto
}

func ToVisitDTOs(visits []models.VisitLog, urlFor URLFunc) []VisitDTO {
	out := make([]VisitDTO, len(visits))
	for i, v := range visits {
		out[i] = ToVisitDTO(v, urlFor)
	}
	return out
}

// ToVisitListResponse converts a page of visits
func ToVisitListResponse(visits []models.VisitLog, params utils.PaginationParams, total int64, urlFor URLFunc) VisitListResponse {
	return VisitListResponse{
		Visits:     ToVisitDTOs(visits, urlFor),
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

func ToVisitPrefillDTO(p *services.VisitPrefill) VisitPrefillDTO {
	dto := VisitPrefillDTO{
		SectionID:    p.SectionID,
		Date:         calendar.Key(p.Date),
		Notes:        p.Notes,
		TaskType:     p.TaskType,
		TemplateName: p.TemplateName,
	}
	if p.Task != nil {
		dto.TaskID = &p.Task.ID
	}
	return dto
}
