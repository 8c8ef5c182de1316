package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/notify"
	"github.com/harukimoto/workspace-hub/internal/policy"
	"github.com/harukimoto/workspace-hub/internal/repository"
	"github.com/harukimoto/workspace-hub/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound          = errors.New("workspace not found")
	ErrInvalidWorkspaceName       = errors.New("workspace name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyWorkspaceMember     = errors.New("user is already a member of this workspace")
	ErrNotWorkspaceOwner          = errors.New("only the workspace owner can perform this action")
	ErrCannotRemoveYourself       = errors.New("the workspace owner cannot remove themselves")
	ErrMemberNotFound             = errors.New("workspace member not found")
	ErrTransferTargetNotMember    = errors.New("transfer recipient is not a member of the workspace")
	ErrTransferToRemovedMember    = errors.New("tasks cannot be transferred to the member being removed")
	ErrCannotChangeOwnerRole      = errors.New("the owner role cannot be changed here")
	ErrWorkspaceConflict          = errors.New("workspace could not be created, please retry")
	ErrSettingsForbidden          = errors.New("user does not have permission to change workspace settings")
)

// Member-removal disposition actions reported in RemovalSummary.
const (
	RemovalActionTransferred = "transferred"
	RemovalActionDeleted     = "deleted"
	RemovalActionNone        = "none"
)

// WorkspaceService provides business logic for workspace lifecycle operations.
type WorkspaceService struct {
	wsRepo   repository.WorkspaceRepository
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	notifier notify.Notifier
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(
	wsRepo repository.WorkspaceRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	notifier notify.Notifier,
) *WorkspaceService {
	return &WorkspaceService{
		wsRepo:   wsRepo,
		taskRepo: taskRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name        string
	Description string
	OwnerID     uint64
}

// CreateWorkspace creates a workspace together with its owner membership and
// points the owner's current workspace at it, atomically. Assignment rules
// start fully restrictive.
func (s *WorkspaceService) CreateWorkspace(input CreateWorkspaceInput) (*models.Workspace, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidWorkspaceName
	}

	owner, err := s.userRepo.FindByID(input.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find owner: %w", err)
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	ws := &models.Workspace{
		Name:        input.Name,
		Description: input.Description,
		InviteCode:  inviteCode,
	}

	if err := s.wsRepo.CreateWithOwner(ws, owner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrWorkspaceConflict
		}
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return ws, nil
}

// BootstrapDefaultWorkspace creates the user's first workspace with a
// defaulted name. Invoked on first successful email verification.
func (s *WorkspaceService) BootstrapDefaultWorkspace(user *models.User) (*models.Workspace, error) {
	return s.CreateWorkspace(CreateWorkspaceInput{
		Name:    fmt.Sprintf("%s's Workspace", user.Name),
		OwnerID: user.ID,
	})
}

// ListWorkspacesForUser returns the user's memberships with workspaces preloaded.
func (s *WorkspaceService) ListWorkspacesForUser(userID uint64) ([]models.Member, error) {
	memberships, err := s.wsRepo.ListMembershipsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return memberships, nil
}

// GetWorkspaceWithMembers returns a workspace and all of its members.
func (s *WorkspaceService) GetWorkspaceWithMembers(wsID uint64) (*models.Workspace, []models.Member, error) {
	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	members, err := s.wsRepo.ListMembers(wsID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	return ws, members, nil
}

// UpdateWorkspaceInput carries optional workspace setting changes.
type UpdateWorkspaceInput struct {
	Name        *string
	Description *string
}

// UpdateWorkspace updates a workspace's name and description. Requires the
// EDIT_WORKSPACE permission.
func (s *WorkspaceService) UpdateWorkspace(wsID, requesterID uint64, input UpdateWorkspaceInput) (*models.Workspace, error) {
	member, err := s.requireMember(wsID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequirePermission(member.Role, policy.PermEditWorkspace); err != nil {
		return nil, ErrSettingsForbidden
	}

	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidWorkspaceName
		}
		ws.Name = *input.Name
	}
	if input.Description != nil {
		ws.Description = *input.Description
	}

	if err := s.wsRepo.Update(ws); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return ws, nil
}

// UpdateAssignmentRules replaces the workspace's assignment rules. Requires
// the MANAGE_WORKSPACE_SETTINGS permission.
func (s *WorkspaceService) UpdateAssignmentRules(wsID, requesterID uint64, rules models.AssignmentRules) (*models.Workspace, error) {
	member, err := s.requireMember(wsID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequirePermission(member.Role, policy.PermManageWorkspaceSettings); err != nil {
		return nil, ErrSettingsForbidden
	}

	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	ws.Rules = rules
	if err := s.wsRepo.Update(ws); err != nil {
		return nil, fmt.Errorf("failed to update assignment rules: %w", err)
	}

	return ws, nil
}

// RegenerateInviteCode generates a new invite code for the workspace.
func (s *WorkspaceService) RegenerateInviteCode(wsID uint64) (*models.Workspace, error) {
	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	ws.InviteCode = code
	if err := s.wsRepo.Update(ws); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return ws, nil
}

// JoinByInvite adds a user to a workspace as MEMBER via invite code.
func (s *WorkspaceService) JoinByInvite(userID uint64, inviteCode string) (*models.Workspace, error) {
	ws, err := s.wsRepo.FindByInviteCode(inviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find workspace by invite code: %w", err)
	}

	if _, err := s.wsRepo.FindMember(ws.ID, userID); err == nil {
		return nil, ErrAlreadyWorkspaceMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.Member{
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        models.RoleMember,
		JoinedAt:    time.Now(),
	}

	if err := s.wsRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyWorkspaceMember
		}
		return nil, fmt.Errorf("failed to add member to workspace: %w", err)
	}

	return ws, nil
}

// ChangeMemberRole promotes or demotes a member between MEMBER and ADMIN.
// The OWNER role is never assigned or removed through this path.
func (s *WorkspaceService) ChangeMemberRole(wsID, actorID, targetID uint64, role models.WorkspaceRole) error {
	actor, err := s.requireMember(wsID, actorID)
	if err != nil {
		return err
	}
	if err := policy.RequirePermission(actor.Role, policy.PermChangeMemberRole); err != nil {
		return ErrNotWorkspaceOwner
	}

	if role == models.RoleOwner {
		return ErrCannotChangeOwnerRole
	}

	target, err := s.wsRepo.FindMember(wsID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find workspace member: %w", err)
	}
	if target.Role == models.RoleOwner {
		return ErrCannotChangeOwnerRole
	}

	if err := s.wsRepo.UpdateMemberRole(wsID, targetID, role); err != nil {
		return fmt.Errorf("failed to change member role: %w", err)
	}

	return nil
}

// RemovalSummary reports the outcome of a member removal.
type RemovalSummary struct {
	TasksAffected int64  `json:"tasks_affected"`
	Action        string `json:"action"`
}

// RemoveMember removes a member from the workspace after disposing of their
// assigned tasks. With transferTo the tasks are reassigned; without it they
// are deleted together with their activity. Every step runs in one
// transaction; any failure leaves the workspace untouched.
func (s *WorkspaceService) RemoveMember(wsID, actorID, targetID uint64, transferTo *uint64) (*RemovalSummary, error) {
	target, err := s.checkRemovalPreconditions(wsID, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if transferTo != nil {
		if *transferTo == targetID {
			return nil, ErrTransferToRemovedMember
		}
		if _, err := s.wsRepo.FindMember(wsID, *transferTo); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTransferTargetNotMember
			}
			return nil, fmt.Errorf("failed to verify transfer recipient: %w", err)
		}
	}

	affected, err := s.wsRepo.RemoveMemberWithTasks(wsID, targetID, transferTo)
	if err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	summary := &RemovalSummary{TasksAffected: affected, Action: RemovalActionNone}
	if affected > 0 {
		if transferTo != nil {
			summary.Action = RemovalActionTransferred
		} else {
			summary.Action = RemovalActionDeleted
		}
	}

	s.notifyRemoved(wsID, target.UserID)

	return summary, nil
}

// PreviewMemberTasks returns the tasks that a removal of the target member
// would affect. Read-only; requires the same owner precondition as removal.
func (s *WorkspaceService) PreviewMemberTasks(wsID, actorID, targetID uint64) ([]models.Task, error) {
	if _, err := s.checkRemovalPreconditions(wsID, actorID, targetID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListAssignedTo(wsID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}

	return tasks, nil
}

// DeleteWorkspace cascades a workspace deletion across projects, tasks,
// activity, and members, and returns the owner's resulting current workspace
// id (nil when no membership remains).
func (s *WorkspaceService) DeleteWorkspace(wsID, requesterID uint64) (*uint64, error) {
	ws, err := s.wsRepo.FindByID(wsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if ws.OwnerID != requesterID {
		return nil, ErrNotWorkspaceOwner
	}

	newCurrent, err := s.wsRepo.DeleteCascade(wsID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete workspace: %w", err)
	}

	return newCurrent, nil
}

// checkRemovalPreconditions validates the owner, target, and self-removal
// rules shared by removal and its preview. Returns the target member.
func (s *WorkspaceService) checkRemovalPreconditions(wsID, actorID, targetID uint64) (*models.Member, error) {
	actor, err := s.requireMember(wsID, actorID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequirePermission(actor.Role, policy.PermRemoveMember); err != nil {
		return nil, ErrNotWorkspaceOwner
	}

	if targetID == actorID {
		return nil, ErrCannotRemoveYourself
	}

	target, err := s.wsRepo.FindMember(wsID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find workspace member: %w", err)
	}

	return target, nil
}

func (s *WorkspaceService) requireMember(wsID, userID uint64) (*models.Member, error) {
	member, err := s.wsRepo.FindMember(wsID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotWorkspaceMember
		}
		return nil, fmt.Errorf("failed to verify workspace membership: %w", err)
	}
	return member, nil
}

// notifyRemoved fires a best-effort notification after the removal committed.
func (s *WorkspaceService) notifyRemoved(wsID, userID uint64) {
	if s.notifier == nil {
		return
	}

	go func() {
		user, err := s.userRepo.FindByID(userID)
		if err != nil {
			return
		}
		wsName := ""
		if ws, err := s.wsRepo.FindByID(wsID); err == nil {
			wsName = ws.Name
		}
		s.notifier.MemberRemoved(user.Email, wsName)
	}()
}
