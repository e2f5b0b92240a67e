package services

import (
	"fmt"

	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/repository"
	"github.com/riverkeep/river-ops/internal/storage"
)

const cleanupBatchSize = 200

// PhotoService maintains consistency between photo rows and stored blobs.
type PhotoService struct {
	photoRepo repository.PhotoRepository
	store     storage.BlobStore
	log       logger.Logger
}

func NewPhotoService(photoRepo repository.PhotoRepository, store storage.BlobStore, log logger.Logger) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		store:     store,
		log:       log.Module("photos"),
	}
}

// CleanupResult reports what an orphan sweep found.
type CleanupResult struct {
	Checked int
	Deleted []models.Photo
}

// CleanupOrphans deletes photo rows whose blob no longer exists. With dryRun
// the rows are only reported.
func (s *PhotoService) CleanupOrphans(dryRun bool) (*CleanupResult, error) {
	result := &CleanupResult{}
	err := s.photoRepo.EachBatch(cleanupBatchSize, func(photos []models.Photo) error {
		for _, p := range photos {
			result.Checked++
			if p.File != "" {
				exists, err := s.store.Exists(p.File)
				if err != nil {
					s.log.Warn("treating unreadable photo key as orphaned",
						logger.Uint64("photo_id", p.ID),
						logger.String("file", p.File),
						logger.Error(err),
					)
				} else if exists {
					continue
				}
			}
			result.Deleted = append(result.Deleted, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan photos: %w", err)
	}

	if dryRun || len(result.Deleted) == 0 {
		return result, nil
	}

	ids := make([]uint64, len(result.Deleted))
	for i, p := range result.Deleted {
		ids[i] = p.ID
		s.log.Warn("deleting orphaned photo record",
			logger.Uint64("photo_id", p.ID),
			logger.String("file", p.File),
		)
	}
	if err := s.photoRepo.DeleteByIDs(ids); err != nil {
		return nil, fmt.Errorf("failed to delete orphaned photos: %w", err)
	}
	return result, nil
}

// URL returns the public address of a stored photo.
func (s *PhotoService) URL(p models.Photo) string {
	return s.store.URL(p.File)
}
