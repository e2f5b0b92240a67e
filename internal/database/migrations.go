package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/logger"
)

// AddIndexes adds the composite indexes the planner and section pages query by.
// Single-column indexes are declared on the models.
func AddIndexes(db *gorm.DB, log logger.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns []string
	}{
		// Section detail: visits per section, newest first
		{"visit_logs", "idx_visit_logs_section_date", []string{"section_id", "date"}},
		// Per-type sums
		{"metrics", "idx_metrics_visit_type", []string{"visit_id", "metric_type"}},
		// Section timeline
		{"section_stage_histories", "idx_stage_histories_section_changed", []string{"section_id", "changed_at"}},
		// Section detail: today's and upcoming work
		{"tasks", "idx_tasks_section_date", []string{"section_id", "date"}},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", logger.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			logger.String("index", idx.name),
			logger.String("table", idx.table),
		)
	}

	return nil
}
