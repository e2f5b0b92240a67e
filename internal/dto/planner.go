package dto

import (
	"time"

	"github.com/riverkeep/river-ops/internal/aggregate"
	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/services"
)

type PlanningChoicesDTO struct {
	Sections         []SectionSummaryDTO `json:"sections"`
	TeamTemplates    []TemplateDTO       `json:"team_templates"`
	ManagerTemplates []TemplateDTO       `json:"manager_templates"`
}

type MonthRefDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type MonthlyPlanDTO struct {
	Year           int                  `json:"year"`
	Month          int                  `json:"month"`
	MonthName      string               `json:"month_name"`
	MonthWeeks     [][]string           `json:"month_weeks"`
	TasksByDate    map[string][]TaskDTO `json:"tasks_by_date"`
	Prev           MonthRefDTO          `json:"prev"`
	Next           MonthRefDTO          `json:"next"`
	IsCurrentMonth bool                 `json:"is_current_month"`
	Today          string               `json:"today"`
	PlanningChoicesDTO
}

type WeeklyPlanDTO struct {
	WeekStart   string               `json:"week_start"`
	WeekEnd     string               `json:"week_end"`
	WeekDays    []string             `json:"week_days"`
	Tasks       []TaskDTO            `json:"tasks"`
	TasksByDate map[string][]TaskDTO `json:"tasks_by_date"`
	PrevWeek    string               `json:"prev_week"`
	NextWeek    string               `json:"next_week"`
	Today       string               `json:"today"`
	PlanningChoicesDTO
}

type DailyAgendaDTO struct {
	Date  string    `json:"date"`
	Tasks []TaskDTO `json:"tasks"`
}

type DashboardDTO struct {
	Totals            aggregate.Totals       `json:"totals"`
	WeedingSummary    []string               `json:"weeding_summary"`
	StageDistribution []aggregate.StageCount `json:"stage_distribution"`
	RecentVisits      []VisitDTO             `json:"recent_visits"`
	GeneratedAt       time.Time              `json:"generated_at"`
}

func toPlanningChoicesDTO(c services.PlanningChoices) PlanningChoicesDTO {
	return PlanningChoicesDTO{
		Sections:         ToSectionSummaryDTOs(c.Sections),
		TeamTemplates:    ToTemplateDTOs(c.TeamTemplates),
		ManagerTemplates: ToTemplateDTOs(c.ManagerTemplates),
	}
}

func toMonthRef(ym calendar.YearMonth) MonthRefDTO {
	return MonthRefDTO{Year: ym.Year, Month: int(ym.Month)}
}

func dateKeys(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = calendar.Key(d)
	}
	return out
}

func ToMonthlyPlanDTO(p *services.MonthlyPlan) MonthlyPlanDTO {
	weeks := make([][]string, len(p.Weeks))
	for i, w := range p.Weeks {
		weeks[i] = dateKeys(w[:])
	}
	return MonthlyPlanDTO{
		Year:               p.Month.Year,
		Month:              int(p.Month.Month),
		MonthName:          p.Month.Month.String(),
		MonthWeeks:         weeks,
		TasksByDate:        ToTasksByDate(p.TasksByDate),
		Prev:               toMonthRef(p.Prev),
		Next:               toMonthRef(p.Next),
		IsCurrentMonth:     p.IsCurrentMonth,
		Today:              calendar.Key(p.Today),
		PlanningChoicesDTO: toPlanningChoicesDTO(p.PlanningChoices),
	}
}

func ToWeeklyPlanDTO(p *services.WeeklyPlan) WeeklyPlanDTO {
	return WeeklyPlanDTO{
		WeekStart:          calendar.Key(p.Window.Start),
		WeekEnd:            calendar.Key(p.Window.End),
		WeekDays:           dateKeys(p.Days),
		Tasks:              ToTaskDTOs(p.Tasks),
		TasksByDate:        ToTasksByDate(p.TasksByDate),
		PrevWeek:           calendar.Key(p.PrevWeek),
		NextWeek:           calendar.Key(p.NextWeek),
		Today:              calendar.Key(p.Today),
		PlanningChoicesDTO: toPlanningChoicesDTO(p.PlanningChoices),
	}
}

func ToDailyAgendaDTO(a *services.DailyAgenda) DailyAgendaDTO {
	return DailyAgendaDTO{Date: calendar.Key(a.Date), Tasks: ToTaskDTOs(a.Tasks)}
}

func ToDashboardDTO(d *services.Dashboard, urlFor URLFunc) DashboardDTO {
	return DashboardDTO{
		Totals:            d.Totals,
		WeedingSummary:    d.WeedingSummary,
		StageDistribution: d.StageDistribution,
		RecentVisits:      ToVisitDTOs(d.RecentVisits, urlFor),
		GeneratedAt:       d.GeneratedAt,
	}
}
