package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/aggregate"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/repository"
	"github.com/riverkeep/river-ops/internal/storage"
)

var colorCodePattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SectionService handles section business logic
type SectionService struct {
	sectionRepo repository.SectionRepository
	taskRepo    repository.TaskRepository
	visitRepo   repository.VisitRepository
	metricRepo  repository.MetricRepository
	photoRepo   repository.PhotoRepository
	store       storage.BlobStore
	cal         Calendar
	hooks       Hooks
	log         logger.Logger
}

// NewSectionService creates a new SectionService
func NewSectionService(
	sectionRepo repository.SectionRepository,
	taskRepo repository.TaskRepository,
	visitRepo repository.VisitRepository,
	metricRepo repository.MetricRepository,
	photoRepo repository.PhotoRepository,
	store storage.BlobStore,
	cal Calendar,
	hooks Hooks,
	log logger.Logger,
) *SectionService {
	return &SectionService{
		sectionRepo: sectionRepo,
		taskRepo:    taskRepo,
		visitRepo:   visitRepo,
		metricRepo:  metricRepo,
		photoRepo:   photoRepo,
		store:       store,
		cal:         cal,
		hooks:       hooks,
		log:         log.Module("sections"),
	}
}

// SectionInput represents input for creating or replacing a section.
// Empty stage and priority keep the current value on update and use the
// defaults on create. Nil geometry keeps the current value; JSON null clears it.
type SectionInput struct {
	Name         string
	ColorCode    string
	CurrentStage models.Stage
	Priority     models.Priority
	Description  string
	Position     *uint
	BoundaryData json.RawMessage
	CenterPoint  json.RawMessage
}

// SectionDetail is everything the section page shows.
type SectionDetail struct {
	Section        *models.Section
	Totals         aggregate.Totals
	WeedingSummary []string
	PastVisits     []models.VisitLog
	StageHistory   []models.SectionStageHistory
	Timeline       []TimelineEntry
	TodayTasks     []models.Task
	FutureTasks    []models.Task
	Photos         []models.Photo
	Today          time.Time
	DaysInStage    int
}

type TimelineKind string

const (
	TimelineVisit       TimelineKind = "visit"
	TimelineStageChange TimelineKind = "stage_change"
)

// TimelineEntry is either a visit or a stage change, keyed by when it was recorded.
type TimelineEntry struct {
	Kind        TimelineKind
	Date        time.Time
	At          time.Time
	Visit       *models.VisitLog
	StageChange *models.SectionStageHistory
}

// List returns every section in manual order
func (s *SectionService) List() ([]models.Section, error) {
	sections, err := s.sectionRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

// GetSection finds a section by ID
func (s *SectionService) GetSection(id uint64) (*models.Section, error) {
	section, err := s.sectionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to find section: %w", err)
	}
	return section, nil
}

// CreateSection validates the input and stores the section with its first
// stage-history entry.
func (s *SectionService) CreateSection(input SectionInput) (*models.Section, error) {
	section := &models.Section{
		ColorCode:    models.DefaultColorCode,
		CurrentStage: models.StageMitigation,
		Priority:     models.PriorityNormal,
	}
	if err := s.apply(section, input); err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(section.Name, 0); err != nil {
		return nil, err
	}

	if err := s.sectionRepo.Create(section, s.cal.now()); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSectionNameTaken
		}
		return nil, fmt.Errorf("failed to create section: %w", err)
	}

	s.hooks.Metrics.RecordStageChange(string(section.CurrentStage))
	s.hooks.invalidate()
	s.log.Info("section created",
		logger.Uint64("section_id", section.ID),
		logger.String("stage", string(section.CurrentStage)),
	)
	return section, nil
}

// UpdateSection replaces a section's editable fields. A stage change appends
// a history entry in the same transaction as the save.
func (s *SectionService) UpdateSection(id uint64, input SectionInput) (*models.Section, error) {
	section, err := s.GetSection(id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(section, input); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(section.Name, section.ID); err != nil {
		return nil, err
	}

	changed, err := s.sectionRepo.Update(section, s.cal.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSectionNameTaken
		}
		return nil, fmt.Errorf("failed to update section: %w", err)
	}

	s.hooks.invalidate()
	if changed {
		s.hooks.Metrics.RecordStageChange(string(section.CurrentStage))
		s.log.Info("section stage changed",
			logger.Uint64("section_id", section.ID),
			logger.String("stage", string(section.CurrentStage)),
		)
	}
	return section, nil
}

// DeleteSection removes a section and everything it owns. Photo blobs are
// removed after the rows are gone; a blob that fails to delete is only logged.
func (s *SectionService) DeleteSection(id uint64) error {
	if _, err := s.GetSection(id); err != nil {
		return err
	}

	photos, err := s.photoRepo.ListBySection(id)
	if err != nil {
		return fmt.Errorf("failed to list section photos: %w", err)
	}

	if err := s.sectionRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to delete section: %w", err)
	}

	for _, p := range photos {
		if err := s.store.Delete(p.File); err != nil {
			s.log.Warn("failed to delete photo blob",
				logger.String("file", p.File),
				logger.Error(err),
			)
		}
	}

	s.hooks.invalidate()
	s.log.Info("section deleted", logger.Uint64("section_id", id), logger.Int("photos", len(photos)))
	return nil
}

// Reorder sets positions from a drag-and-drop order. The whole order is
// applied or none of it.
func (s *SectionService) Reorder(ids []uint64) error {
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrInvalidSectionOrder
		}
		seen[id] = struct{}{}
	}

	if err := s.sectionRepo.Reorder(ids); err != nil {
		if errors.Is(err, repository.ErrUnknownSection) {
			return ErrInvalidSectionOrder
		}
		return fmt.Errorf("failed to reorder sections: %w", err)
	}
	return nil
}

// Detail assembles the section page: totals, weeding summary, visits and
// stage changes as one timeline, today's and upcoming tasks.
func (s *SectionService) Detail(id uint64) (*SectionDetail, error) {
	section, err := s.GetSection(id)
	if err != nil {
		return nil, err
	}

	sums, err := s.metricRepo.SumByType(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to sum metrics: %w", err)
	}
	totals := aggregate.TotalsFromSums(sums)

	weeds, err := s.metricRepo.SumWeedsByLabel(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weeds: %w", err)
	}

	visits, err := s.visitRepo.ListBySection(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}

	history, err := s.sectionRepo.History(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage history: %w", err)
	}

	today := s.cal.Today()
	todayTasks, err := s.taskRepo.ListBySectionOnDate(id, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's tasks: %w", err)
	}
	futureTasks, err := s.taskRepo.ListUpcomingBySection(id, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}

	photos, err := s.photoRepo.ListBySection(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	return &SectionDetail{
		Section:        section,
		Totals:         totals,
		WeedingSummary: aggregate.WeedingSummary(weeds, totals.Weeds),
		PastVisits:     visits,
		StageHistory:   history,
		Timeline:       BuildTimeline(visits, history),
		TodayTasks:     todayTasks,
		FutureTasks:    futureTasks,
		Photos:         photos,
		Today:          today,
		DaysInStage:    DaysInStage(section, history, s.cal.now()),
	}, nil
}

// DaysInStage counts whole days since the most recent stage change, or since
// the section was created when it has no history. history is newest first.
func DaysInStage(section *models.Section, history []models.SectionStageHistory, now time.Time) int {
	since := section.CreatedAt
	if len(history) > 0 {
		since = history[0].ChangedAt
	}
	if since.IsZero() || now.Before(since) {
		return 0
	}
	return int(now.Sub(since) / (24 * time.Hour))
}

// BuildTimeline merges visits and stage changes, newest first.
func BuildTimeline(visits []models.VisitLog, history []models.SectionStageHistory) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(visits)+len(history))
	for i := range visits {
		v := &visits[i]
		entries = append(entries, TimelineEntry{
			Kind:  TimelineVisit,
			Date:  v.Date,
			At:    v.CreatedAt,
			Visit: v,
		})
	}
	for i := range history {
		h := &history[i]
		entries = append(entries, TimelineEntry{
			Kind:        TimelineStageChange,
			Date:        h.ChangedAt,
			At:          h.ChangedAt,
			StageChange: h,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.After(entries[j].At)
	})
	return entries
}

func (s *SectionService) apply(section *models.Section, input SectionInput) error {
	verr := &ValidationError{}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		verr.Add("name", "This field is required.")
	case len(name) > 100:
		verr.Add("name", "Ensure this value has at most 100 characters.")
	}

	if input.ColorCode != "" && !colorCodePattern.MatchString(input.ColorCode) {
		verr.Add("color_code", "Enter a color as #RRGGBB.")
	}
	if input.CurrentStage != "" && !input.CurrentStage.Valid() {
		verr.Add("current_stage", fmt.Sprintf("%q is not a valid stage.", input.CurrentStage))
	}
	if input.Priority != "" && !input.Priority.Valid() {
		verr.Add("priority", fmt.Sprintf("%q is not a valid priority.", input.Priority))
	}
	if input.BoundaryData != nil && !json.Valid(input.BoundaryData) {
		verr.Add("boundary_data", "Enter valid JSON.")
	}
	if input.CenterPoint != nil && !json.Valid(input.CenterPoint) {
		verr.Add("center_point", "Enter valid JSON.")
	}
	if err := verr.Err(); err != nil {
		return err
	}

	section.Name = name
	section.Description = input.Description
	if input.ColorCode != "" {
		section.ColorCode = strings.ToLower(input.ColorCode)
	}
	if input.CurrentStage != "" {
		section.CurrentStage = input.CurrentStage
	}
	if input.Priority != "" {
		section.Priority = input.Priority
	}
	if input.Position != nil {
		section.Position = *input.Position
	}
	if input.BoundaryData != nil {
		section.BoundaryData = geometry(input.BoundaryData)
	}
	if input.CenterPoint != nil {
		section.CenterPoint = geometry(input.CenterPoint)
	}
	return nil
}

func geometry(raw json.RawMessage) datatypes.JSON {
	if string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}

func (s *SectionService) ensureNameFree(name string, excludeID uint64) error {
	taken, err := s.sectionRepo.NameTaken(name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check section name: %w", err)
	}
	if taken {
		return ErrSectionNameTaken
	}
	return nil
}
