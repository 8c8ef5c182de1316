package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes beyond what AutoMigrate
// creates. Only supported on postgres; mysql deployments rely on the
// AutoMigrate tags.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"tasks", "idx_tasks_workspace_id", "workspace_id"},
		{"tasks", "idx_tasks_project_id", "project_id"},
		{"tasks", "idx_tasks_assigned_to", "assigned_to"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_created_at", "created_at"},

		{"members", "idx_members_workspace_id", "workspace_id"},
		{"members", "idx_members_user_id", "user_id"},

		{"task_activities", "idx_task_activities_task_id", "task_id"},
		{"task_activities", "idx_task_activities_workspace_id", "workspace_id"},

		{"workspaces", "idx_workspaces_invite_code", "invite_code"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}
