package repository

import (
	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/models"
)

// GormPhotoRepository is a GORM implementation of PhotoRepository
type GormPhotoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new PhotoRepository
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &GormPhotoRepository{db: db}
}

// ListBySection returns a section's photos, newest first
func (r *GormPhotoRepository) ListBySection(sectionID uint64) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Where("section_id = ?", sectionID).
		Order("timestamp DESC").
		Order("id DESC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// EachBatch walks every photo in id order, batchSize rows at a time
func (r *GormPhotoRepository) EachBatch(batchSize int, fn func(photos []models.Photo) error) error {
	var batch []models.Photo
	return r.db.FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

func (r *GormPhotoRepository) DeleteByIDs(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&models.Photo{}).Error
}
