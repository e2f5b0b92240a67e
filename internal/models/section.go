package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Stage string

const (
	StageMitigation Stage = "mitigation"
	StageClearing   Stage = "clearing"
	StagePlanting   Stage = "planting"
	StageFollowUp   Stage = "follow_up"
	StageCommunity  Stage = "community"
)

// Stages lists every stage in lifecycle order.
var Stages = []Stage{StageMitigation, StageClearing, StagePlanting, StageFollowUp, StageCommunity}

var stageLabels = map[Stage]string{
	StageMitigation: "Mitigation",
	StageClearing:   "Clearing",
	StagePlanting:   "Planting",
	StageFollowUp:   "Follow-up",
	StageCommunity:  "Community",
}

func (s Stage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

const DefaultColorCode = "#808080"

type Section struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	ColorCode    string         `gorm:"type:varchar(7);not null;default:'#808080'" json:"color_code"`
	CurrentStage Stage          `gorm:"type:varchar(20);not null;default:'mitigation'" json:"current_stage"`
	Priority     Priority       `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	Description  string         `gorm:"type:text" json:"description"`
	Position     uint           `gorm:"not null;default:0;index" json:"position"`
	BoundaryData datatypes.JSON `json:"boundary_data,omitempty"`
	CenterPoint  datatypes.JSON `json:"center_point,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Relations
	StageHistory []SectionStageHistory `gorm:"foreignKey:SectionID" json:"-"`
}

func (s *Section) BeforeCreate(tx *gorm.DB) error {
	if s.ColorCode == "" {
		s.ColorCode = DefaultColorCode
	}
	if s.CurrentStage == "" {
		s.CurrentStage = StageMitigation
	}
	if s.Priority == "" {
		s.Priority = PriorityNormal
	}
	return nil
}

// SectionStageHistory is an append-only record of a stage the section entered.
type SectionStageHistory struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	SectionID uint64    `gorm:"not null;index" json:"section_id"`
	Stage     Stage     `gorm:"type:varchar(20);not null" json:"stage"`
	ChangedAt time.Time `gorm:"not null;index" json:"changed_at"`
	Notes     string    `gorm:"type:text" json:"notes"`
}

func (SectionStageHistory) TableName() string {
	return "section_stage_histories"
}
