package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/calendar"
)

type MetricType string

const (
	MetricLitterGeneral    MetricType = "litter_general"
	MetricLitterRecyclable MetricType = "litter_recyclable"
	MetricPlant            MetricType = "plant"
	MetricWeed             MetricType = "weed"
)

func (m MetricType) Valid() bool {
	switch m {
	case MetricLitterGeneral, MetricLitterRecyclable, MetricPlant, MetricWeed:
		return true
	}
	return false
}

// IsLitter reports whether the metric counts bags of litter.
func (m MetricType) IsLitter() bool {
	return m == MetricLitterGeneral || m == MetricLitterRecyclable
}

// VisitLog records field work on a section. TaskID is nil for unplanned visits.
type VisitLog struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    *uint64   `gorm:"index" json:"task_id"`
	SectionID uint64    `gorm:"not null;index" json:"section_id"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task    *Task    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID" json:"section,omitempty"`
	Metrics []Metric `gorm:"foreignKey:VisitID" json:"metrics,omitempty"`
	Photos  []Photo  `gorm:"foreignKey:VisitID" json:"photos,omitempty"`
}

func (v *VisitLog) BeforeSave(tx *gorm.DB) error {
	v.Date = calendar.DateOf(v.Date)
	return nil
}

type Metric struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	VisitID    uint64     `gorm:"not null;index" json:"visit_id"`
	MetricType MetricType `gorm:"type:varchar(20);not null;index" json:"metric_type"`
	Label      string     `gorm:"type:varchar(100)" json:"label"`
	Value      int64      `gorm:"not null;default:0" json:"value"`
}

// Photo stores the blob-store key of the image, never the bytes.
type Photo struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	File        string    `gorm:"type:varchar(255);not null" json:"file"`
	SectionID   uint64    `gorm:"not null;index" json:"section_id"`
	VisitID     *uint64   `gorm:"index" json:"visit_id"`
	Description string    `gorm:"type:text" json:"description"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	return nil
}
