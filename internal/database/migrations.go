package database

import (
	"fmt"
	"log/slog"

	"github.com/projectplanning/planning-cloud-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes that struct tags cannot express
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Unassigned-task lookups and the one-approved-per-task check
		{&models.Commitment{}, "commitments", "idx_commitments_task_status", "task_id, status"},

		// Project listings ordered by recency
		{&models.Task{}, "tasks", "idx_tasks_project_created", "project_id, created_at"},

		// Observation history per task
		{&models.TaskObservation{}, "task_observations", "idx_task_observations_task_created", "task_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			log.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
