package repository

import (
	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/aggregate"
	"github.com/riverkeep/river-ops/internal/models"
)

// GormMetricRepository is a GORM implementation of MetricRepository
type GormMetricRepository struct {
	db *gorm.DB
}

// NewMetricRepository creates a new MetricRepository
func NewMetricRepository(db *gorm.DB) MetricRepository {
	return &GormMetricRepository{db: db}
}

func (r *GormMetricRepository) scoped(sectionID *uint64) *gorm.DB {
	query := r.db.Model(&models.Metric{})
	if sectionID != nil {
		query = query.
			Joins("JOIN visit_logs ON visit_logs.id = metrics.visit_id").
			Where("visit_logs.section_id = ?", *sectionID)
	}
	return query
}

// SumByType sums metric values per type. Types with no rows are absent.
func (r *GormMetricRepository) SumByType(sectionID *uint64) ([]aggregate.TypeSum, error) {
	var sums []aggregate.TypeSum
	err := r.scoped(sectionID).
		Select("metrics.metric_type AS metric_type, COALESCE(SUM(metrics.value), 0) AS total").
		Group("metrics.metric_type").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	return sums, nil
}

// SumWeedsByLabel sums weed metrics per label, largest first.
func (r *GormMetricRepository) SumWeedsByLabel(sectionID *uint64) ([]aggregate.LabelSum, error) {
	var sums []aggregate.LabelSum
	err := r.scoped(sectionID).
		Select("metrics.label AS label, COALESCE(SUM(metrics.value), 0) AS total").
		Where("metrics.metric_type = ?", models.MetricWeed).
		Group("metrics.label").
		Order("total DESC").
		Order("label ASC").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	return sums, nil
}
