package services

import (
	"errors"
	"fmt"

	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/repository"
	"gorm.io/gorm"
)

// ActivityService exposes read access to the task activity ledger. The
// ledger itself is append-only; rows appear through the task mutation
// transactions and disappear only with their parent task or workspace.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	taskRepo     repository.TaskRepository
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activityRepo repository.ActivityRepository, taskRepo repository.TaskRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		taskRepo:     taskRepo,
	}
}

// ListTaskActivities returns a task's activity, newest first.
func (s *ActivityService) ListTaskActivities(workspaceID, taskID uint64) ([]models.TaskActivity, error) {
	if _, err := s.taskRepo.FindInWorkspace(taskID, workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	activities, err := s.activityRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task activity: %w", err)
	}

	return activities, nil
}

// ListWorkspaceActivities returns workspace activity, newest first,
// paginated, with actor and task preloaded for display.
func (s *ActivityService) ListWorkspaceActivities(workspaceID uint64, page, pageSize int) ([]models.TaskActivity, int64, error) {
	activities, total, err := s.activityRepo.ListByWorkspace(workspaceID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workspace activity: %w", err)
	}

	return activities, total, nil
}
