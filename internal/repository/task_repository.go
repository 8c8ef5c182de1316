package repository

import (
	"github.com/harukimoto/workspace-hub/internal/database"
	"github.com/harukimoto/workspace-hub/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithActivity persists a task and its creation activity in one transaction
func (r *GormTaskRepository) CreateWithActivity(task *models.Task, activity *models.TaskActivity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		activity.TaskID = task.ID
		activity.WorkspaceID = task.WorkspaceID

		return tx.Create(activity).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindInWorkspace finds a task by ID scoped to a workspace
func (r *GormTaskRepository) FindInWorkspace(taskID, workspaceID uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("id = ? AND workspace_id = ?", taskID, workspaceID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.workspace_id = ?", filter.WorkspaceID)

	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Creator").Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListAssignedTo lists tasks in a workspace assigned to a user
func (r *GormTaskRepository) ListAssignedTo(workspaceID, userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("workspace_id = ? AND assigned_to = ?", workspaceID, userID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateWithActivities saves a task and appends its change activities in one transaction
func (r *GormTaskRepository) UpdateWithActivities(task *models.Task, activities []models.TaskActivity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if len(activities) == 0 {
			return nil
		}

		for i := range activities {
			activities[i].TaskID = task.ID
			activities[i].WorkspaceID = task.WorkspaceID
		}

		return tx.Create(&activities).Error
	})
}

// DeleteWithActivities deletes a task and all of its activity rows in one transaction
func (r *GormTaskRepository) DeleteWithActivities(taskID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskActivity{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, taskID).Error
	})
}
