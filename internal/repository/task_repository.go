package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/database"
	"github.com/riverkeep/river-ops/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit("Section", "Template").Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit("Section", "Template").Save(task).Error
}

// Delete removes a task; visit logs recorded against it become unplanned
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VisitLog{}).Where("task_id = ?", id).Update("task_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListBetween lists tasks dated within [from, to], ordered by date then assignee
func (r *GormTaskRepository) ListBetween(from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Scopes(database.DateBetween("date", calendar.DateOf(from), calendar.DateOf(to))).
		Preload("Section").
		Preload("Template").
		Order("date ASC").
		Order("assignee_type ASC").
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListForDay orders managers before the team, then by section name with
// section-less tasks last.
func (r *GormTaskRepository) ListForDay(date time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Joins("LEFT JOIN sections ON sections.id = tasks.section_id").
		Where("tasks.date = ?", calendar.DateOf(date)).
		Preload("Section").
		Preload("Template").
		Order("CASE WHEN tasks.assignee_type = 'manager' THEN 0 ELSE 1 END").
		Order("CASE WHEN sections.name IS NULL THEN 1 ELSE 0 END, sections.name ASC").
		Order("tasks.id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) ListBySectionOnDate(sectionID uint64, date time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("section_id = ? AND date = ?", sectionID, calendar.DateOf(date)).
		Preload("Template").
		Order("assignee_type ASC").
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) ListUpcomingBySection(sectionID uint64, after time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("section_id = ? AND date > ? AND is_completed = ?", sectionID, calendar.DateOf(after), false).
		Preload("Template").
		Order("date ASC").
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
