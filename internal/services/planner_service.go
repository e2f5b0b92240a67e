package services

import (
	"fmt"
	"time"

	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/repository"
)

// PlannerService builds the monthly, weekly and daily planning views.
// Malformed date parameters fall back to today; they are never errors.
type PlannerService struct {
	taskRepo     repository.TaskRepository
	sectionRepo  repository.SectionRepository
	templateRepo repository.TemplateRepository
	cal          Calendar
}

func NewPlannerService(
	taskRepo repository.TaskRepository,
	sectionRepo repository.SectionRepository,
	templateRepo repository.TemplateRepository,
	cal Calendar,
) *PlannerService {
	return &PlannerService{
		taskRepo:     taskRepo,
		sectionRepo:  sectionRepo,
		templateRepo: templateRepo,
		cal:          cal,
	}
}

// PlanningChoices are the pickers offered alongside a planner: every section
// and the active templates split by assignee.
type PlanningChoices struct {
	Sections         []models.Section
	TeamTemplates    []models.TaskTemplate
	ManagerTemplates []models.TaskTemplate
}

type MonthlyPlan struct {
	Month          calendar.YearMonth
	Weeks          []calendar.Week
	TasksByDate    map[string][]models.Task
	Prev           calendar.YearMonth
	Next           calendar.YearMonth
	IsCurrentMonth bool
	Today          time.Time
	PlanningChoices
}

type WeeklyPlan struct {
	Window      calendar.Window
	Days        []time.Time
	Tasks       []models.Task
	TasksByDate map[string][]models.Task
	PrevWeek    time.Time
	NextWeek    time.Time
	Today       time.Time
	PlanningChoices
}

type DailyAgenda struct {
	Date  time.Time
	Tasks []models.Task
}

// Monthly returns the grid for the requested month with every task dated
// inside it, padding days included.
func (s *PlannerService) Monthly(yearStr, monthStr string) (*MonthlyPlan, error) {
	today := s.cal.Today()
	ym := calendar.ResolveMonth(yearStr, monthStr, today)
	weeks := calendar.MonthGrid(ym, s.cal.WeekStart)
	from, to := calendar.GridRange(weeks)

	tasks, err := s.taskRepo.ListBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	choices, err := s.choices()
	if err != nil {
		return nil, err
	}

	return &MonthlyPlan{
		Month:           ym,
		Weeks:           weeks,
		TasksByDate:     calendar.GroupByDate(tasks, taskDate),
		Prev:            calendar.PrevMonth(ym),
		Next:            calendar.NextMonth(ym),
		IsCurrentMonth:  ym.Contains(today),
		Today:           today,
		PlanningChoices: choices,
	}, nil
}

// Weekly returns the seven days of the week containing weekStr.
func (s *PlannerService) Weekly(weekStr string) (*WeeklyPlan, error) {
	today := s.cal.Today()
	anchor := calendar.ParseDateOr(weekStr, today)
	window := calendar.WeekWindow(anchor, s.cal.WeekStart)

	tasks, err := s.taskRepo.ListBetween(window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	choices, err := s.choices()
	if err != nil {
		return nil, err
	}

	return &WeeklyPlan{
		Window:          window,
		Days:            window.Days(),
		Tasks:           tasks,
		TasksByDate:     calendar.GroupByDate(tasks, taskDate),
		PrevWeek:        window.Prev().Start,
		NextWeek:        window.Next().Start,
		Today:           today,
		PlanningChoices: choices,
	}, nil
}

// Daily returns one day's tasks, managers first, then by section name.
func (s *PlannerService) Daily(dateStr string) (*DailyAgenda, error) {
	date := calendar.ParseDateOr(dateStr, s.cal.Today())

	tasks, err := s.taskRepo.ListForDay(date)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &DailyAgenda{Date: date, Tasks: tasks}, nil
}

func (s *PlannerService) choices() (PlanningChoices, error) {
	sections, err := s.sectionRepo.List()
	if err != nil {
		return PlanningChoices{}, fmt.Errorf("failed to list sections: %w", err)
	}

	active, err := s.templateRepo.List(repository.TemplateFilter{ActiveOnly: true})
	if err != nil {
		return PlanningChoices{}, fmt.Errorf("failed to list templates: %w", err)
	}

	choices := PlanningChoices{Sections: sections}
	for _, t := range active {
		switch t.AssigneeType {
		case models.AssigneeManager:
			choices.ManagerTemplates = append(choices.ManagerTemplates, t)
		default:
			choices.TeamTemplates = append(choices.TeamTemplates, t)
		}
	}
	return choices, nil
}

func taskDate(t models.Task) time.Time {
	return t.Date
}
