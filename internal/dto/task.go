package dto

import (
	"time"

	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/models"
)

// TemplateDTO represents a task template in API responses
type TemplateDTO struct {
	ID                  uint64              `json:"id"`
	Name                string              `json:"name"`
	TaskType            models.TaskType     `json:"task_type"`
	AssigneeType        models.AssigneeType `json:"assignee_type"`
	DefaultInstructions string              `json:"default_instructions"`
	IsActive            bool                `json:"is_active"`
	CreatedAt           time.Time           `json:"created_at"`
}

// TaskDTO represents a task in API responses. Date is YYYY-MM-DD.
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Date         string              `json:"date"`
	SectionID    *uint64             `json:"section_id"`
	Section      *SectionSummaryDTO  `json:"section,omitempty"`
	AssigneeType models.AssigneeType `json:"assignee_type"`
	Instructions string              `json:"instructions"`
	IsCompleted  bool                `json:"is_completed"`
	TemplateID   *uint64             `json:"template_id"`
	Template     *TemplateDTO        `json:"template,omitempty"`
	TaskType     string              `json:"task_type"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func ToTemplateDTO(t models.TaskTemplate) TemplateDTO {
	return TemplateDTO{
		ID:                  t.ID,
		Name:                t.Name,
		TaskType:            t.TaskType,
		AssigneeType:        t.AssigneeType,
		DefaultInstructions: t.DefaultInstructions,
		IsActive:            t.IsActive,
		CreatedAt:           t.CreatedAt,
	}
}

func ToTemplateDTOs(templates []models.TaskTemplate) []TemplateDTO {
	out := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		out[i] = ToTemplateDTO(t)
	}
	return out
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Date:         calendar.Key(task.Date),
		SectionID:    task.SectionID,
		AssigneeType: task.AssigneeType,
		Instructions: task.Instructions,
		IsCompleted:  task.IsCompleted,
		TemplateID:   task.TemplateID,
		TaskType:     task.TaskType(),
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	// Include section if preloaded
	if task.Section != nil {
		section := ToSectionSummaryDTO(*task.Section)
		dto.Section = &section
	}

	// Include template if preloaded
	if task.Template != nil {
		template := ToTemplateDTO(*task.Template)
		dto.Template = &template
	}

	return dto
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// ToTasksByDate converts grouped tasks, keeping the date keys.
func ToTasksByDate(grouped map[string][]models.Task) map[string][]TaskDTO {
	out := make(map[string][]TaskDTO, len(grouped))
	for key, tasks := range grouped {
		out[key] = ToTaskDTOs(tasks)
	}
	return out
}
