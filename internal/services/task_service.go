package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/constants"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/repository"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo     repository.TaskRepository
	sectionRepo  repository.SectionRepository
	templateRepo repository.TemplateRepository
	visitRepo    repository.VisitRepository
	aiService    *AIService
	cal          Calendar
	hooks        Hooks
	log          logger.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	sectionRepo repository.SectionRepository,
	templateRepo repository.TemplateRepository,
	visitRepo repository.VisitRepository,
	aiService *AIService,
	cal Calendar,
	hooks Hooks,
	log logger.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		sectionRepo:  sectionRepo,
		templateRepo: templateRepo,
		visitRepo:    visitRepo,
		aiService:    aiService,
		cal:          cal,
		hooks:        hooks,
		log:          log.Module("tasks"),
	}
}

// TaskInput represents input for creating or replacing a task. When a
// template is given and Instructions is blank, the template's default
// instructions are copied; an empty AssigneeType follows the template.
type TaskInput struct {
	Date         time.Time
	SectionID    *uint64
	AssigneeType models.AssigneeType
	Instructions string
	TemplateID   *uint64
	IsCompleted  bool
}

// VisitPrefill is the starting point for logging a visit against a task.
type VisitPrefill struct {
	Task         *models.Task
	SectionID    *uint64
	Date         time.Time
	Notes        string
	TaskType     string
	TemplateName string
}

// GetTask returns a task with its section and template
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Section", "Template")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a new task, filling instructions from the template when blank
func (s *TaskService) CreateTask(input TaskInput) (*models.Task, error) {
	task := &models.Task{}
	if err := s.apply(task, input, true); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.Debug("task created",
		logger.Uint64("task_id", task.ID),
		logger.Date("date", task.Date),
		logger.String("assignee", string(task.AssigneeType)),
	)
	return s.GetTask(task.ID)
}

// UpdateTask replaces a task's fields
func (s *TaskService) UpdateTask(taskID uint64, input TaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	// Keeping an already-linked retired template is allowed.
	requireActive := input.TemplateID != nil && (task.TemplateID == nil || *task.TemplateID != *input.TemplateID)
	if err := s.apply(task, input, requireActive); err != nil {
		return nil, err
	}
	task.IsCompleted = input.IsCompleted

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(task.ID)
}

// DeleteTask deletes a task. Visits logged against it are kept as unplanned.
func (s *TaskService) DeleteTask(taskID uint64) error {
	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// CompleteTask marks the task done and logs a visit for today noting it.
func (s *TaskService) CompleteTask(taskID uint64) (*models.VisitLog, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.SectionID == nil {
		return nil, ErrTaskHasNoSection
	}

	visit := &models.VisitLog{
		TaskID:    &task.ID,
		SectionID: *task.SectionID,
		Date:      s.cal.Today(),
		Notes:     "Task completed: " + task.Instructions,
	}
	if err := s.visitRepo.CreateWithChildren(visit); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	s.hooks.Metrics.RecordTaskCompleted()
	s.hooks.Metrics.RecordVisit(true, nil)
	s.hooks.invalidate()
	s.log.Info("task completed",
		logger.Uint64("task_id", task.ID),
		logger.Uint64("visit_id", visit.ID),
	)
	return visit, nil
}

// PrefillVisit returns the defaults for a visit form. Without a task the
// visit is unplanned and dated today.
func (s *TaskService) PrefillVisit(taskID *uint64, sectionID *uint64) (*VisitPrefill, error) {
	prefill := &VisitPrefill{
		SectionID: sectionID,
		Date:      s.cal.Today(),
		TaskType:  "unplanned",
	}
	if taskID == nil {
		return prefill, nil
	}

	task, err := s.GetTask(*taskID)
	if err != nil {
		return nil, err
	}
	prefill.Task = task
	prefill.SectionID = task.SectionID
	prefill.Date = task.Date
	prefill.Notes = task.Instructions
	prefill.TaskType = task.TaskType()
	if task.Template != nil {
		prefill.TemplateName = task.Template.Name
	}
	return prefill, nil
}

// DraftTasks asks the AI service to propose tasks from free text. Drafts are
// validated against known sections but not stored.
func (s *TaskService) DraftTasks(ctx context.Context, text string) ([]models.Task, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	sections, err := s.sectionRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	byName := make(map[string]*models.Section, len(sections))
	names := make([]string, 0, len(sections))
	for i := range sections {
		byName[strings.ToLower(sections[i].Name)] = &sections[i]
		names = append(names, sections[i].Name)
	}

	today := s.cal.Today()
	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, text, today, names)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	drafts := make([]models.Task, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		instructions := strings.TrimSpace(aiTask.Instructions)
		if instructions == "" {
			continue
		}

		date, ok := calendar.ParseDate(aiTask.Date)
		if !ok || date.Before(today) {
			date = today
		}

		assignee := models.AssigneeType(strings.ToLower(strings.TrimSpace(aiTask.AssigneeType)))
		if !assignee.Valid() {
			assignee = models.AssigneeTeam
		}

		draft := models.Task{
			Date:         date,
			AssigneeType: assignee,
			Instructions: instructions,
		}
		if section, ok := byName[strings.ToLower(strings.TrimSpace(aiTask.Section))]; ok {
			draft.SectionID = &section.ID
			draft.Section = section
		}
		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoValidTasks
	}

	return drafts, nil
}

func (s *TaskService) apply(task *models.Task, input TaskInput, requireActiveTemplate bool) error {
	verr := &ValidationError{}

	if input.Date.IsZero() {
		verr.Add("date", "This field is required.")
	}
	if input.AssigneeType != "" && !input.AssigneeType.Valid() {
		verr.Add("assignee_type", "Select a valid assignee type.")
	}

	if input.SectionID != nil {
		if _, err := s.sectionRepo.FindByID(*input.SectionID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to find section: %w", err)
			}
			verr.Add("section_id", "Select a valid section.")
		}
	}

	var template *models.TaskTemplate
	if input.TemplateID != nil {
		t, err := s.templateRepo.FindByID(*input.TemplateID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			verr.Add("template_id", "Select a valid template.")
		case err != nil:
			return fmt.Errorf("failed to find template: %w", err)
		case requireActiveTemplate && !t.IsActive:
			verr.Add("template_id", "This template has been retired.")
		default:
			template = t
		}
	}

	instructions := input.Instructions
	assignee := input.AssigneeType
	if template != nil {
		if strings.TrimSpace(instructions) == "" {
			instructions = template.DefaultInstructions
		}
		if assignee == "" {
			assignee = template.AssigneeType
		}
	}
	if assignee == "" {
		assignee = models.AssigneeTeam
	}
	if strings.TrimSpace(instructions) == "" {
		verr.Add("instructions", "This field is required.")
	}

	if err := verr.Err(); err != nil {
		return err
	}

	task.Date = calendar.DateOf(input.Date)
	task.SectionID = input.SectionID
	task.AssigneeType = assignee
	task.Instructions = instructions
	task.TemplateID = input.TemplateID
	task.Section = nil
	task.Template = nil
	return nil
}
