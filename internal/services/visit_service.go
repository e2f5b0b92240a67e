package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/constants"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/repository"
	"github.com/riverkeep/river-ops/internal/storage"
	"github.com/riverkeep/river-ops/internal/utils"
)

// VisitService records field visits with their metrics and photos.
type VisitService struct {
	visitRepo   repository.VisitRepository
	taskRepo    repository.TaskRepository
	sectionRepo repository.SectionRepository
	store       storage.BlobStore
	cal         Calendar
	hooks       Hooks
	log         logger.Logger
}

func NewVisitService(
	visitRepo repository.VisitRepository,
	taskRepo repository.TaskRepository,
	sectionRepo repository.SectionRepository,
	store storage.BlobStore,
	cal Calendar,
	hooks Hooks,
	log logger.Logger,
) *VisitService {
	return &VisitService{
		visitRepo:   visitRepo,
		taskRepo:    taskRepo,
		sectionRepo: sectionRepo,
		store:       store,
		cal:         cal,
		hooks:       hooks,
		log:         log.Module("visits"),
	}
}

type MetricInput struct {
	MetricType models.MetricType
	Label      string
	Value      int64
}

// PhotoInput is one photo row of the form. A nil Content means no file was
// attached and the row is dropped.
type PhotoInput struct {
	Filename    string
	Content     io.Reader
	Description string
}

// VisitInput represents input for logging a visit. A zero Date means today;
// a missing section is taken from the linked task.
type VisitInput struct {
	TaskID    *uint64
	SectionID *uint64
	Date      time.Time
	Notes     string
	Metrics   []MetricInput
	Photos    []PhotoInput
}

// CreateVisit validates every row before writing anything. Photo blobs are
// stored first and removed again if the database write fails.
func (s *VisitService) CreateVisit(input VisitInput) (*models.VisitLog, error) {
	visit, photos, err := s.build(input)
	if err != nil {
		return nil, err
	}

	uploadedAt := s.cal.now()
	var stored []string
	for _, p := range photos {
		key, err := s.store.Save(p.Content, p.Filename, uploadedAt)
		if err != nil {
			s.discard(stored)
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
		stored = append(stored, key)
		visit.Photos = append(visit.Photos, models.Photo{
			File:        key,
			Description: p.Description,
			Timestamp:   uploadedAt,
		})
	}

	if err := s.visitRepo.CreateWithChildren(visit); err != nil {
		s.discard(stored)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to create visit log: %w", err)
	}

	values := make(map[string]int64)
	for _, m := range visit.Metrics {
		values[string(m.MetricType)] += m.Value
	}
	s.hooks.Metrics.RecordVisit(visit.TaskID != nil, values)
	if visit.TaskID != nil {
		s.hooks.Metrics.RecordTaskCompleted()
	}
	for range stored {
		s.hooks.Metrics.RecordPhotoStored()
	}
	s.hooks.invalidate()

	s.log.Info("visit logged",
		logger.Uint64("visit_id", visit.ID),
		logger.Uint64("section_id", visit.SectionID),
		logger.Bool("planned", visit.TaskID != nil),
		logger.Int("metrics", len(visit.Metrics)),
		logger.Int("photos", len(visit.Photos)),
	)
	return s.GetVisit(visit.ID)
}

func (s *VisitService) GetVisit(id uint64) (*models.VisitLog, error) {
	visit, err := s.visitRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("failed to find visit log: %w", err)
	}
	return visit, nil
}

// ListVisits returns a page of visits, newest first.
func (s *VisitService) ListVisits(params utils.PaginationParams) ([]models.VisitLog, int64, error) {
	visits, total, err := s.visitRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list visit logs: %w", err)
	}
	return visits, total, nil
}

func (s *VisitService) build(input VisitInput) (*models.VisitLog, []PhotoInput, error) {
	verr := &ValidationError{}

	var task *models.Task
	if input.TaskID != nil {
		t, err := s.taskRepo.FindByID(*input.TaskID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("failed to find task: %w", err)
			}
			verr.Add("task_id", "Select a valid task.")
		}
		task = t
	}

	sectionID := input.SectionID
	if sectionID == nil && task != nil {
		sectionID = task.SectionID
	}
	if sectionID == nil {
		verr.Add("section_id", "This field is required.")
	} else if _, err := s.sectionRepo.FindByID(*sectionID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("failed to find section: %w", err)
		}
		verr.Add("section_id", "Select a valid section.")
	}

	metrics := make([]models.Metric, 0, len(input.Metrics))
	for i, m := range input.Metrics {
		field := fmt.Sprintf("metrics[%d]", i)
		if !m.MetricType.Valid() {
			verr.Add(field+".metric_type", "Select a valid metric type.")
			continue
		}
		if m.Value < 0 {
			verr.Add(field+".value", "Ensure this value is greater than or equal to 0.")
			continue
		}
		label := strings.TrimSpace(m.Label)
		if utf8.RuneCountInString(label) > 100 {
			verr.Add(field+".label", "Ensure this value has at most 100 characters.")
			continue
		}
		if m.Value == 0 && !m.MetricType.IsLitter() {
			continue
		}
		metrics = append(metrics, models.Metric{MetricType: m.MetricType, Label: label, Value: m.Value})
	}

	photos := make([]PhotoInput, 0, len(input.Photos))
	for i, p := range input.Photos {
		if p.Content == nil {
			continue
		}
		desc := strings.TrimSpace(p.Description)
		if desc != "" && utf8.RuneCountInString(desc) < constants.MinPhotoDescriptionLength {
			verr.Add(fmt.Sprintf("photos[%d].description", i),
				fmt.Sprintf("Description must be at least %d characters when uploading a photo.", constants.MinPhotoDescriptionLength))
			continue
		}
		p.Description = desc
		photos = append(photos, p)
	}

	if err := verr.Err(); err != nil {
		return nil, nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.cal.Today()
	}

	return &models.VisitLog{
		TaskID:    input.TaskID,
		SectionID: *sectionID,
		Date:      calendar.DateOf(date),
		Notes:     input.Notes,
		Metrics:   metrics,
	}, photos, nil
}

func (s *VisitService) discard(keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(key); err != nil {
			s.log.Warn("failed to remove orphaned photo blob", logger.String("file", key), logger.Error(err))
		}
	}
}
