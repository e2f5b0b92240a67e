package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverkeep/river-ops/internal/aggregate"
	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/services"
)

// SectionSummaryDTO is the short form nested in tasks and visits.
type SectionSummaryDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	ColorCode string `json:"color_code"`
}

// SectionDTO carries the map payload alongside the section fields.
type SectionDTO struct {
	ID           uint64          `json:"id"`
	Name         string          `json:"name"`
	ColorCode    string          `json:"color_code"`
	CurrentStage models.Stage    `json:"current_stage"`
	StageLabel   string          `json:"stage_label"`
	Priority     models.Priority `json:"priority"`
	Description  string          `json:"description"`
	Position     uint            `json:"position"`
	BoundaryData json.RawMessage `json:"boundary_data"`
	CenterPoint  json.RawMessage `json:"center_point"`
	DetailURL    string          `json:"detail_url"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type StageChangeDTO struct {
	ID         uint64       `json:"id"`
	Stage      models.Stage `json:"stage"`
	StageLabel string       `json:"stage_label"`
	ChangedAt  time.Time    `json:"changed_at"`
	Notes      string       `json:"notes,omitempty"`
}

type TimelineEntryDTO struct {
	Kind        services.TimelineKind `json:"kind"`
	Date        string                `json:"date"`
	At          time.Time             `json:"at"`
	Visit       *VisitDTO             `json:"visit,omitempty"`
	StageChange *StageChangeDTO       `json:"stage_change,omitempty"`
}

type SectionDetailDTO struct {
	Section        SectionDTO         `json:"section"`
	Totals         aggregate.Totals   `json:"totals"`
	WeedingSummary []string           `json:"weeding_summary"`
	PastVisits     []VisitDTO         `json:"past_visits"`
	StageHistory   []StageChangeDTO   `json:"stage_history"`
	Timeline       []TimelineEntryDTO `json:"timeline"`
	TodayTasks     []TaskDTO          `json:"today_tasks"`
	FutureTasks    []TaskDTO          `json:"future_tasks"`
	Photos         []PhotoDTO         `json:"photos"`
	Today          string             `json:"today"`
	DaysInStage    int                `json:"days_in_stage"`
}

func ToSectionSummaryDTO(s models.Section) SectionSummaryDTO {
	return SectionSummaryDTO{ID: s.ID, Name: s.Name, ColorCode: s.ColorCode}
}

// ToSectionDTO converts a Section model to SectionDTO
func ToSectionDTO(s models.Section) SectionDTO {
	return SectionDTO{
		ID:           s.ID,
		Name:         s.Name,
		ColorCode:    s.ColorCode,
		CurrentStage: s.CurrentStage,
		StageLabel:   s.CurrentStage.Label(),
		Priority:     s.Priority,
		Description:  s.Description,
		Position:     s.Position,
		BoundaryData: rawJSON(s.BoundaryData),
		CenterPoint:  rawJSON(s.CenterPoint),
		DetailURL:    fmt.Sprintf("/api/sections/%d", s.ID),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func ToSectionDTOs(sections []models.Section) []SectionDTO {
	out := make([]SectionDTO, len(sections))
	for i, s := range sections {
		out[i] = ToSectionDTO(s)
	}
	return out
}

func ToSectionSummaryDTOs(sections []models.Section) []SectionSummaryDTO {
	out := make([]SectionSummaryDTO, len(sections))
	for i, s := range sections {
		out[i] = ToSectionSummaryDTO(s)
	}
	return out
}

func ToStageChangeDTO(h models.SectionStageHistory) StageChangeDTO {
	return StageChangeDTO{
		ID:         h.ID,
		Stage:      h.Stage,
		StageLabel: h.Stage.Label(),
		ChangedAt:  h.ChangedAt,
		Notes:      h.Notes,
	}
}

// ToSectionDetailDTO converts the section page context.
func ToSectionDetailDTO(d *services.SectionDetail, urlFor URLFunc) SectionDetailDTO {
	history := make([]StageChangeDTO, len(d.StageHistory))
	for i, h := range d.StageHistory {
		history[i] = ToStageChangeDTO(h)
	}

	timeline := make([]TimelineEntryDTO, len(d.Timeline))
	for i, e := range d.Timeline {
		entry := TimelineEntryDTO{Kind: e.Kind, Date: calendar.Key(e.Date), At: e.At}
		if e.Visit != nil {
			visit := ToVisitDTO(*e.Visit, urlFor)
			entry.Visit = &visit
		}
		if e.StageChange != nil {
			change := ToStageChangeDTO(*e.StageChange)
			entry.StageChange = &change
		}
		timeline[i] = entry
	}

	return SectionDetailDTO{
		Section:        ToSectionDTO(*d.Section),
		Totals:         d.Totals,
		WeedingSummary: d.WeedingSummary,
		PastVisits:     ToVisitDTOs(d.PastVisits, urlFor),
		StageHistory:   history,
		Timeline:       timeline,
		TodayTasks:     ToTaskDTOs(d.TodayTasks),
		FutureTasks:    ToTaskDTOs(d.FutureTasks),
		Photos:         ToPhotoDTOs(d.Photos, urlFor),
		Today:          calendar.Key(d.Today),
		DaysInStage:    d.DaysInStage,
	}
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}
