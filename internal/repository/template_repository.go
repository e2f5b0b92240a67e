package repository

import (
	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/models"
)

// GormTemplateRepository is a GORM implementation of TemplateRepository
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &GormTemplateRepository{db: db}
}

func (r *GormTemplateRepository) Create(template *models.TaskTemplate) error {
	return r.db.Create(template).Error
}

func (r *GormTemplateRepository) FindByID(id uint64) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// List returns templates ordered by assignee type, then name, unless the
// filter asks for active templates first.
func (r *GormTemplateRepository) List(filter TemplateFilter) ([]models.TaskTemplate, error) {
	query := r.db.Model(&models.TaskTemplate{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.AssigneeType != nil {
		query = query.Where("assignee_type = ?", *filter.AssigneeType)
	}

	if filter.ActiveFirst {
		query = query.Order("is_active DESC")
	} else {
		query = query.Order("assignee_type ASC")
	}

	var templates []models.TaskTemplate
	if err := query.Order("name ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *GormTemplateRepository) Update(template *models.TaskTemplate) error {
	return r.db.Save(template).Error
}

// Retire marks a template inactive; tasks referencing it are untouched
func (r *GormTemplateRepository) Retire(id uint64) error {
	result := r.db.Model(&models.TaskTemplate{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
