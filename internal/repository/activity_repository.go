package repository

import (
	"github.com/harukimoto/workspace-hub/internal/database"
	"github.com/harukimoto/workspace-hub/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// ListByTask returns a task's activity, newest first
func (r *GormActivityRepository) ListByTask(taskID uint64) ([]models.TaskActivity, error) {
	var activities []models.TaskActivity
	if err := r.db.Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// ListByWorkspace returns workspace activity, newest first, paginated
func (r *GormActivityRepository) ListByWorkspace(workspaceID uint64, page, pageSize int) ([]models.TaskActivity, int64, error) {
	query := r.db.Model(&models.TaskActivity{}).Where("workspace_id = ?", workspaceID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []models.TaskActivity
	listQuery := query.Order("created_at DESC, id DESC").
		Scopes(database.Paginate(page, pageSize))

	if err := listQuery.Preload("User").Preload("Task").Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}
