package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/database"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/utils"
)

// GormVisitRepository is a GORM implementation of VisitRepository
type GormVisitRepository struct {
	db *gorm.DB
}

// NewVisitRepository creates a new VisitRepository
func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &GormVisitRepository{db: db}
}

// CreateWithChildren stores a visit, its metrics and photos, and completes
// the linked task, in a single transaction
func (r *GormVisitRepository) CreateWithChildren(visit *models.VisitLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Task", "Section", "Metrics", "Photos").Create(visit).Error; err != nil {
			return fmt.Errorf("failed to create visit log: %w", err)
		}

		for i := range visit.Metrics {
			visit.Metrics[i].VisitID = visit.ID
		}
		if len(visit.Metrics) > 0 {
			if err := tx.Create(&visit.Metrics).Error; err != nil {
				return fmt.Errorf("failed to create metrics: %w", err)
			}
		}

		for i := range visit.Photos {
			visit.Photos[i].VisitID = &visit.ID
			visit.Photos[i].SectionID = visit.SectionID
		}
		if len(visit.Photos) > 0 {
			if err := tx.Create(&visit.Photos).Error; err != nil {
				return fmt.Errorf("failed to create photos: %w", err)
			}
		}

		if visit.TaskID != nil {
			result := tx.Model(&models.Task{}).Where("id = ?", *visit.TaskID).Update("is_completed", true)
			if result.Error != nil {
				return fmt.Errorf("failed to complete task: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

func (r *GormVisitRepository) FindByID(id uint64) (*models.VisitLog, error) {
	var visit models.VisitLog
	err := r.db.
		Preload("Section").
		Preload("Task.Template").
		Preload("Metrics").
		Preload("Photos").
		First(&visit, id).Error
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// List returns a page of visits, newest first, with the total count
func (r *GormVisitRepository) List(params utils.PaginationParams) ([]models.VisitLog, int64, error) {
	var total int64
	if err := r.db.Model(&models.VisitLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var visits []models.VisitLog
	err := r.db.
		Scopes(newestFirst, database.Paginate(params)).
		Preload("Section").
		Preload("Task.Template").
		Preload("Metrics").
		Find(&visits).Error
	if err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

// Recent returns the latest visits across all sections
func (r *GormVisitRepository) Recent(limit int) ([]models.VisitLog, error) {
	var visits []models.VisitLog
	err := r.db.
		Scopes(newestFirst).
		Preload("Section").
		Preload("Task.Template").
		Limit(limit).
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}

// ListBySection returns a section's visits with metrics and photos, newest first
func (r *GormVisitRepository) ListBySection(sectionID uint64) ([]models.VisitLog, error) {
	var visits []models.VisitLog
	err := r.db.
		Where("section_id = ?", sectionID).
		Scopes(newestFirst).
		Preload("Task.Template").
		Preload("Metrics").
		Preload("Photos").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("date DESC").Order("created_at DESC").Order("id DESC")
}
