package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/database"
	"github.com/riverkeep/river-ops/internal/models"
)

// GormSectionRepository is a GORM implementation of SectionRepository
type GormSectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository creates a new SectionRepository
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &GormSectionRepository{db: db}
}

// Create inserts the section and records its initial stage.
func (r *GormSectionRepository) Create(section *models.Section, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("StageHistory").Create(section).Error; err != nil {
			return err
		}
		return appendStage(tx, section.ID, section.CurrentStage, at)
	})
}

// Update compares the persisted stage with the new one inside the same
// transaction as the save, and reports whether a history row was added.
func (r *GormSectionRepository) Update(section *models.Section, at time.Time) (bool, error) {
	changed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var persisted models.Section
		if err := tx.Select("id", "current_stage").First(&persisted, section.ID).Error; err != nil {
			return err
		}

		if err := tx.Omit("StageHistory").Save(section).Error; err != nil {
			return err
		}

		if persisted.CurrentStage == section.CurrentStage {
			return nil
		}
		changed = true
		return appendStage(tx, section.ID, section.CurrentStage, at)
	})
	return changed, err
}

func appendStage(tx *gorm.DB, sectionID uint64, stage models.Stage, at time.Time) error {
	entry := models.SectionStageHistory{
		SectionID: sectionID,
		Stage:     stage,
		ChangedAt: at,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record stage change: %w", err)
	}
	return nil
}

// FindByID finds a section by ID
func (r *GormSectionRepository) FindByID(id uint64) (*models.Section, error) {
	var section models.Section
	if err := r.db.First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// List returns every section in manual order
func (r *GormSectionRepository) List() ([]models.Section, error) {
	var sections []models.Section
	if err := r.db.Scopes(database.SectionOrder).Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// Delete removes the section with its tasks, visits, metrics, photos and history.
func (r *GormSectionRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		visitIDs := tx.Model(&models.VisitLog{}).Select("id").Where("section_id = ?", id)

		if err := tx.Where("visit_id IN (?)", visitIDs).Delete(&models.Metric{}).Error; err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", id).Delete(&models.VisitLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", id).Delete(&models.SectionStageHistory{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Section{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Reorder assigns position i to ids[i]. Any failure rolls back every update.
func (r *GormSectionRepository) Reorder(ids []uint64) error {
	unique := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Section{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(unique)) {
			return ErrUnknownSection
		}

		for i, id := range ids {
			if err := tx.Model(&models.Section{}).Where("id = ?", id).Update("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByStage counts sections per current stage
func (r *GormSectionRepository) CountByStage() (map[models.Stage]int64, error) {
	var rows []struct {
		CurrentStage models.Stage
		Count        int64
	}
	err := r.db.Model(&models.Section{}).
		Select("current_stage, COUNT(*) AS count").
		Group("current_stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Stage]int64, len(rows))
	for _, row := range rows {
		counts[row.CurrentStage] = row.Count
	}
	return counts, nil
}

// History lists stage changes for a section, newest first
func (r *GormSectionRepository) History(sectionID uint64) ([]models.SectionStageHistory, error) {
	var history []models.SectionStageHistory
	err := r.db.Where("section_id = ?", sectionID).
		Order("changed_at DESC").
		Order("id DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// NameTaken reports whether another section already uses name
func (r *GormSectionRepository) NameTaken(name string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.Section{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
