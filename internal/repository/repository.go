package repository

import (
	"errors"
	"time"

	"github.com/riverkeep/river-ops/internal/aggregate"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/utils"
)

// ErrUnknownSection is returned by Reorder when an id in the order does not exist.
var ErrUnknownSection = errors.New("section repository: unknown section in order")

// SectionRepository defines the interface for section data access
type SectionRepository interface {
	// Create inserts a section and its first stage-history row atomically
	Create(section *models.Section, at time.Time) error

	// Update saves a section and appends a stage-history row when the stage changed
	Update(section *models.Section, at time.Time) (bool, error)

	// FindByID finds a section by ID
	FindByID(id uint64) (*models.Section, error)

	// List returns every section in manual order
	List() ([]models.Section, error)

	// Delete removes a section together with everything it owns
	Delete(id uint64) error

	// Reorder assigns positions 0..n-1 following ids, all or nothing
	Reorder(ids []uint64) error

	// CountByStage counts sections per current stage
	CountByStage() (map[models.Stage]int64, error)

	// History lists stage changes for a section, newest first
	History(sectionID uint64) ([]models.SectionStageHistory, error)

	// NameTaken reports whether another section already uses name
	NameTaken(name string, excludeID uint64) (bool, error)
}

// TemplateFilter holds filtering options for listing templates
type TemplateFilter struct {
	ActiveOnly   bool
	AssigneeType *models.AssigneeType
	// ActiveFirst orders by active flag then name instead of assignee type then name
	ActiveFirst bool
}

// TemplateRepository defines the interface for task template data access
type TemplateRepository interface {
	Create(template *models.TaskTemplate) error
	FindByID(id uint64) (*models.TaskTemplate, error)
	List(filter TemplateFilter) ([]models.TaskTemplate, error)
	Update(template *models.TaskTemplate) error

	// Retire marks a template inactive; tasks referencing it are untouched
	Retire(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete removes a task; visit logs recorded against it become unplanned
	Delete(id uint64) error

	// ListBetween lists tasks dated within [from, to], ordered by date then assignee
	ListBetween(from, to time.Time) ([]models.Task, error)

	// ListForDay lists one day's tasks: managers first, then by section name, section-less last
	ListForDay(date time.Time) ([]models.Task, error)

	// ListBySectionOnDate lists a section's tasks for a single date
	ListBySectionOnDate(sectionID uint64, date time.Time) ([]models.Task, error)

	// ListUpcomingBySection lists a section's incomplete tasks dated after the given date
	ListUpcomingBySection(sectionID uint64, after time.Time) ([]models.Task, error)
}

// VisitRepository defines the interface for visit log data access
type VisitRepository interface {
	// CreateWithChildren stores a visit, its metrics and photos, and completes
	// the linked task, in a single transaction
	CreateWithChildren(visit *models.VisitLog) error

	FindByID(id uint64) (*models.VisitLog, error)

	// List returns a page of visits, newest first, with the total count
	List(params utils.PaginationParams) ([]models.VisitLog, int64, error)

	// Recent returns the latest visits across all sections
	Recent(limit int) ([]models.VisitLog, error)

	// ListBySection returns a section's visits with metrics and photos, newest first
	ListBySection(sectionID uint64) ([]models.VisitLog, error)
}

// MetricRepository computes aggregates over recorded metrics. A nil section
// means every section.
type MetricRepository interface {
	SumByType(sectionID *uint64) ([]aggregate.TypeSum, error)
	SumWeedsByLabel(sectionID *uint64) ([]aggregate.LabelSum, error)
}

// PhotoRepository defines the interface for photo data access
type PhotoRepository interface {
	ListBySection(sectionID uint64) ([]models.Photo, error)

	// EachBatch walks every photo in id order, batchSize rows at a time
	EachBatch(batchSize int, fn func(photos []models.Photo) error) error

	DeleteByIDs(ids []uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// UpdateLastLogin records a successful login
	UpdateLastLogin(id uint64, at time.Time) error
}
