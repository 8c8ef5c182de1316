package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/notify"
	"github.com/harukimoto/workspace-hub/internal/policy"
	"github.com/harukimoto/workspace-hub/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrProjectNotFound     = errors.New("project not found in this workspace")
	ErrNotWorkspaceMember  = errors.New("user is not a member of the workspace")
	ErrAssigneeNotMember   = errors.New("assignee is not a member of the workspace")
	ErrTaskEditForbidden   = errors.New("only the task creator or the workspace owner can edit these fields")
	ErrTaskStatusForbidden = errors.New("user does not have permission to update this task")
	ErrTaskDeleteForbidden = errors.New("only the task creator or the workspace owner can delete this task")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleEmpty          = errors.New("title cannot be empty")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	wsRepo      repository.WorkspaceRepository
	userRepo    repository.UserRepository
	notifier    notify.Notifier
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	wsRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	notifier notify.Notifier,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		wsRepo:      wsRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Status      models.TaskStatus
	DueDate     *time.Time
	ProjectID   uint64
	WorkspaceID uint64
	CreatorID   uint64
	AssignedTo  *uint64
}

// CreateTask validates project linkage and assignment rules, then persists
// the task together with its creation activity in one transaction.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.WorkspaceID != input.WorkspaceID {
		return nil, ErrProjectNotFound
	}

	creatorMember, err := s.findMember(input.WorkspaceID, input.CreatorID, ErrNotWorkspaceMember)
	if err != nil {
		return nil, err
	}

	var assignee *models.User
	if input.AssignedTo != nil {
		assigneeMember, err := s.findMember(input.WorkspaceID, *input.AssignedTo, ErrAssigneeNotMember)
		if err != nil {
			return nil, err
		}

		ws, err := s.wsRepo.FindByID(input.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("failed to find workspace: %w", err)
		}

		if err := policy.CanAssign(creatorMember.Role, assigneeMember.Role, ws.Rules); err != nil {
			return nil, err
		}

		assignee, err = s.userRepo.FindByID(*input.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("failed to find assignee: %w", err)
		}
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
		ProjectID:   input.ProjectID,
		WorkspaceID: input.WorkspaceID,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   input.CreatorID,
	}

	activity := &models.TaskActivity{
		UserID:      input.CreatorID,
		Action:      models.ActivityTaskCreated,
		Description: "created this task",
	}

	if err := s.taskRepo.CreateWithActivity(task, activity); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.notifyAssigned(assignee, task)

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee", "Project")
}

// UpdateTaskInput represents input for updating a task. Nil pointers leave
// the field untouched; the Clear flags reset optional fields.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.TaskPriority
	Status        *models.TaskStatus
	DueDate       *time.Time
	ClearDueDate  bool
	AssignedTo    *uint64
	ClearAssignee bool
}

// touchesRestrictedFields reports whether the update goes beyond a
// status-only change.
func (in UpdateTaskInput) touchesRestrictedFields() bool {
	return in.Title != nil || in.Description != nil || in.Priority != nil ||
		in.DueDate != nil || in.ClearDueDate ||
		in.AssignedTo != nil || in.ClearAssignee
}

// UpdateTask applies field changes under the edit-scope policy and records a
// structured diff of every changed field as activity rows, atomically with
// the task write.
func (s *TaskService) UpdateTask(workspaceID, taskID, requesterID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindInWorkspace(taskID, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	requester, err := s.findMember(workspaceID, requesterID, ErrNotWorkspaceMember)
	if err != nil {
		return nil, err
	}

	scope := policy.EditScopeFor(task, requesterID, requester.Role)
	if input.touchesRestrictedFields() {
		if !scope.AllFields {
			return nil, ErrTaskEditForbidden
		}
	} else if !scope.StatusOnly {
		return nil, ErrTaskStatusForbidden
	}

	// Resolve the new assignee before any write so the assignment check and
	// the name lookups for the audit trail see consistent state.
	newAssignee := task.AssignedTo
	if input.ClearAssignee {
		newAssignee = nil
	} else if input.AssignedTo != nil {
		newAssignee = input.AssignedTo
	}

	assigneeChanged := !uint64PtrEqual(task.AssignedTo, newAssignee)

	var oldAssigneeUser, newAssigneeUser *models.User
	if assigneeChanged {
		if task.AssignedTo != nil {
			oldAssigneeUser, err = s.userRepo.FindByID(*task.AssignedTo)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to find previous assignee: %w", err)
			}
		}
		if newAssignee != nil {
			assigneeMember, err := s.findMember(workspaceID, *newAssignee, ErrAssigneeNotMember)
			if err != nil {
				return nil, err
			}

			ws, err := s.wsRepo.FindByID(workspaceID)
			if err != nil {
				return nil, fmt.Errorf("failed to find workspace: %w", err)
			}

			// The updater's role governs the assignment, not the original creator's.
			if err := policy.CanAssign(requester.Role, assigneeMember.Role, ws.Rules); err != nil {
				return nil, err
			}

			newAssigneeUser, err = s.userRepo.FindByID(*newAssignee)
			if err != nil {
				return nil, fmt.Errorf("failed to find assignee: %w", err)
			}
		}
	}

	snapshot := *task

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	task.AssignedTo = newAssignee

	activities := diffActivities(&snapshot, task, requesterID, oldAssigneeUser, newAssigneeUser)

	if err := s.taskRepo.UpdateWithActivities(task, activities); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if assigneeChanged {
		s.notifyAssigned(newAssigneeUser, task)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee", "Project")
}

// DeleteTask removes a task and its activity trail. Deletion is restricted to
// the task creator and the workspace owner; assignees have no delete rights.
func (s *TaskService) DeleteTask(workspaceID, taskID, requesterID uint64) error {
	task, err := s.taskRepo.FindInWorkspace(taskID, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	requester, err := s.findMember(workspaceID, requesterID, ErrNotWorkspaceMember)
	if err != nil {
		return err
	}

	if !policy.CanDeleteTask(task, requesterID, requester.Role) {
		return ErrTaskDeleteForbidden
	}

	if err := s.taskRepo.DeleteWithActivities(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// GetTask returns a task in the workspace with related data
func (s *TaskService) GetTask(workspaceID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindInWorkspace(taskID, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee", "Project")
}

// ListTasksInput represents filters for listing tasks in a workspace
type ListTasksInput struct {
	WorkspaceID uint64
	ProjectID   *uint64
	Status      *models.TaskStatus
	AssignedTo  *uint64
	Page        int
	PageSize    int
}

// ListTasks returns tasks in a workspace matching the filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		WorkspaceID: input.WorkspaceID,
		ProjectID:   input.ProjectID,
		Status:      input.Status,
		AssignedTo:  input.AssignedTo,
		Page:        input.Page,
		PageSize:    input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

func (s *TaskService) findMember(workspaceID, userID uint64, notMemberErr error) (*models.Member, error) {
	member, err := s.wsRepo.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notMemberErr
		}
		return nil, fmt.Errorf("failed to verify workspace membership: %w", err)
	}
	return member, nil
}

// notifyAssigned fires a best-effort assignment notification after commit.
func (s *TaskService) notifyAssigned(assignee *models.User, task *models.Task) {
	if s.notifier == nil || assignee == nil {
		return
	}

	email := assignee.Email
	title := task.Title
	wsID := task.WorkspaceID
	go func() {
		wsName := ""
		if ws, err := s.wsRepo.FindByID(wsID); err == nil {
			wsName = ws.Name
		}
		s.notifier.TaskAssigned(email, title, wsName)
	}()
}

func uint64PtrEqual(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
