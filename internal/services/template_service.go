package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/repository"
)

// TemplateService manages reusable task templates.
type TemplateService struct {
	templateRepo repository.TemplateRepository
	log          logger.Logger
}

func NewTemplateService(templateRepo repository.TemplateRepository, log logger.Logger) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		log:          log.Module("templates"),
	}
}

type TemplateInput struct {
	Name                string
	TaskType            models.TaskType
	AssigneeType        models.AssigneeType
	DefaultInstructions string
}

// ListTemplates returns every template, active ones first.
func (s *TemplateService) ListTemplates() ([]models.TaskTemplate, error) {
	templates, err := s.templateRepo.List(repository.TemplateFilter{ActiveFirst: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// ActiveTemplates returns the templates offered when planning new work,
// optionally for one assignee type.
func (s *TemplateService) ActiveTemplates(assignee *models.AssigneeType) ([]models.TaskTemplate, error) {
	templates, err := s.templateRepo.List(repository.TemplateFilter{ActiveOnly: true, AssigneeType: assignee})
	if err != nil {
		return nil, fmt.Errorf("failed to list active templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) GetTemplate(id uint64) (*models.TaskTemplate, error) {
	template, err := s.templateRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) CreateTemplate(input TemplateInput) (*models.TaskTemplate, error) {
	template := &models.TaskTemplate{IsActive: true}
	if err := applyTemplate(template, input); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Create(template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) UpdateTemplate(id uint64, input TemplateInput) (*models.TaskTemplate, error) {
	template, err := s.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	if err := applyTemplate(template, input); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Update(template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return template, nil
}

// RetireTemplate hides a template from new work. Existing tasks keep it.
func (s *TemplateService) RetireTemplate(id uint64) (*models.TaskTemplate, error) {
	if err := s.templateRepo.Retire(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to retire template: %w", err)
	}

	template, err := s.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	s.log.Info("template retired", logger.Uint64("template_id", id), logger.String("name", template.Name))
	return template, nil
}

func applyTemplate(template *models.TaskTemplate, input TemplateInput) error {
	verr := &ValidationError{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		verr.Add("name", "This field is required.")
	} else if len(name) > 100 {
		verr.Add("name", "Ensure this value has at most 100 characters.")
	}
	if !input.TaskType.Valid() {
		verr.Add("task_type", "Select a valid task type.")
	}
	if input.AssigneeType != "" && !input.AssigneeType.Valid() {
		verr.Add("assignee_type", "Select a valid assignee type.")
	}
	if strings.TrimSpace(input.DefaultInstructions) == "" {
		verr.Add("default_instructions", "This field is required.")
	}
	if err := verr.Err(); err != nil {
		return err
	}

	template.Name = name
	template.TaskType = input.TaskType
	template.DefaultInstructions = input.DefaultInstructions
	if input.AssigneeType != "" {
		template.AssigneeType = input.AssigneeType
	} else if template.AssigneeType == "" {
		template.AssigneeType = models.AssigneeTeam
	}
	return nil
}
