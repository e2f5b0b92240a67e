package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/calendar"
)

type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	Date         time.Time    `gorm:"type:date;not null;index:idx_tasks_date_assignee,priority:1" json:"date"`
	SectionID    *uint64      `gorm:"index" json:"section_id"`
	AssigneeType AssigneeType `gorm:"type:varchar(10);not null;default:'team';index:idx_tasks_date_assignee,priority:2" json:"assignee_type"`
	Instructions string       `gorm:"type:text;not null" json:"instructions"`
	IsCompleted  bool         `gorm:"not null;default:false;index" json:"is_completed"`
	TemplateID   *uint64      `gorm:"index" json:"template_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	Section  *Section      `gorm:"foreignKey:SectionID" json:"section,omitempty"`
	Template *TaskTemplate `gorm:"foreignKey:TemplateID;constraint:OnDelete:SET NULL" json:"template,omitempty"`
}

func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.Date = calendar.DateOf(t.Date)
	return nil
}

// TaskType is the template's type, or "unplanned" for ad hoc tasks.
func (t *Task) TaskType() string {
	if t.Template != nil {
		return string(t.Template.TaskType)
	}
	return "unplanned"
}
