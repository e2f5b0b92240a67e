package models

import "time"

type TaskType string

const (
	TaskTypeLitterRun TaskType = "litter_run"
	TaskTypeWeeding   TaskType = "weeding"
	TaskTypePlanting  TaskType = "planting"
	TaskTypeAdmin     TaskType = "admin"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeLitterRun, TaskTypeWeeding, TaskTypePlanting, TaskTypeAdmin:
		return true
	}
	return false
}

type AssigneeType string

const (
	AssigneeTeam    AssigneeType = "team"
	AssigneeManager AssigneeType = "manager"
)

func (a AssigneeType) Valid() bool {
	return a == AssigneeTeam || a == AssigneeManager
}

// TaskTemplate is retired rather than deleted so historic tasks keep their reference.
type TaskTemplate struct {
	ID                  uint64       `gorm:"primarykey" json:"id"`
	Name                string       `gorm:"type:varchar(100);not null" json:"name"`
	TaskType            TaskType     `gorm:"type:varchar(20);not null" json:"task_type"`
	AssigneeType        AssigneeType `gorm:"type:varchar(10);not null;default:'team'" json:"assignee_type"`
	DefaultInstructions string       `gorm:"type:text;not null" json:"default_instructions"`
	IsActive            bool         `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt           time.Time    `json:"created_at"`
}
