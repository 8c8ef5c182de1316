package repository

import (
	"errors"
	"fmt"

	"github.com/harukimoto/workspace-hub/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateWorkspace is returned when creating the workspace row fails inside the bootstrap transaction.
	ErrCreateWorkspace = errors.New("workspace repository: create workspace failed")
	// ErrCreateOwnerMembership is returned when creating the owner membership fails inside the bootstrap transaction.
	ErrCreateOwnerMembership = errors.New("workspace repository: create owner membership failed")
	// ErrPointCurrentWorkspace is returned when updating the user's current workspace fails inside the bootstrap transaction.
	ErrPointCurrentWorkspace = errors.New("workspace repository: update current workspace failed")
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// CreateWithOwner creates the workspace, its owner membership, and points the
// owner's current workspace at it, atomically. A workspace never exists
// without exactly one owner membership.
func (r *GormWorkspaceRepository) CreateWithOwner(ws *models.Workspace, owner *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		ws.OwnerID = owner.ID

		if err := tx.Create(ws).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateWorkspace, err)
		}

		member := &models.Member{
			WorkspaceID: ws.ID,
			UserID:      owner.ID,
			Role:        models.RoleOwner,
			JoinedAt:    tx.NowFunc(),
		}

		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOwnerMembership, err)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", owner.ID).
			Update("current_workspace_id", ws.ID).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPointCurrentWorkspace, err)
		}
		owner.CurrentWorkspaceID = &ws.ID

		return nil
	})
}

// FindByID finds a workspace by ID
func (r *GormWorkspaceRepository) FindByID(id uint64) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.First(&ws, id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// FindByInviteCode finds a workspace by invite code
func (r *GormWorkspaceRepository) FindByInviteCode(code string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.Where("invite_code = ?", code).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// Update updates a workspace
func (r *GormWorkspaceRepository) Update(ws *models.Workspace) error {
	return r.db.Save(ws).Error
}

// DeleteCascade deletes a workspace and every dependent row in one
// transaction. The purge order is explicit: activity, tasks, projects,
// members, then the workspace itself. New dependent entity types must be
// added here deliberately.
func (r *GormWorkspaceRepository) DeleteCascade(workspaceID, ownerID uint64) (*uint64, error) {
	var newCurrent *uint64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.TaskActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Member{}).Error; err != nil {
			return err
		}

		current, err := repointCurrentWorkspace(tx, ownerID, workspaceID)
		if err != nil {
			return err
		}
		newCurrent = current

		return tx.Delete(&models.Workspace{}, workspaceID).Error
	})
	if err != nil {
		return nil, err
	}

	return newCurrent, nil
}

// AddMember adds a member to a workspace
func (r *GormWorkspaceRepository) AddMember(member *models.Member) error {
	return r.db.Create(member).Error
}

// FindMember finds a specific workspace member
func (r *GormWorkspaceRepository) FindMember(workspaceID, userID uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMemberRole changes a member's role
func (r *GormWorkspaceRepository) UpdateMemberRole(workspaceID, userID uint64, role models.WorkspaceRole) error {
	return r.db.Model(&models.Member{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Update("role", role).Error
}

// RemoveMemberWithTasks removes a member and disposes of their assigned tasks
// in one transaction. With a transfer target every collected task is
// reassigned; without one every collected task and its activity rows are
// deleted. The target's current-workspace pointer is repointed if it
// referenced this workspace.
func (r *GormWorkspaceRepository) RemoveMemberWithTasks(workspaceID, targetID uint64, transferTo *uint64) (int64, error) {
	var affected int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var tasks []models.Task
		if err := tx.Where("workspace_id = ? AND assigned_to = ?", workspaceID, targetID).
			Find(&tasks).Error; err != nil {
			return err
		}
		affected = int64(len(tasks))

		if len(tasks) > 0 {
			if transferTo != nil {
				if err := tx.Model(&models.Task{}).
					Where("workspace_id = ? AND assigned_to = ?", workspaceID, targetID).
					Update("assigned_to", *transferTo).Error; err != nil {
					return err
				}
			} else {
				taskIDs := make([]uint64, len(tasks))
				for i, t := range tasks {
					taskIDs[i] = t.ID
				}

				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskActivity{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Where("workspace_id = ? AND user_id = ?", workspaceID, targetID).
			Delete(&models.Member{}).Error; err != nil {
			return err
		}

		if _, err := repointCurrentWorkspace(tx, targetID, workspaceID); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// ListMembers lists all members of a workspace
func (r *GormWorkspaceRepository) ListMembers(workspaceID uint64) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUser lists all workspaces a user is a member of
func (r *GormWorkspaceRepository) ListMembershipsByUser(userID uint64) ([]models.Member, error) {
	var memberships []models.Member
	if err := r.db.Preload("Workspace").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// repointCurrentWorkspace moves a user's current-workspace pointer off the
// given workspace. The replacement is the user's oldest remaining membership,
// or null when none remain. Runs inside the caller's transaction; the caller
// must already have removed any membership rows that should not be
// candidates. Returns the user's resulting pointer.
func repointCurrentWorkspace(tx *gorm.DB, userID, workspaceID uint64) (*uint64, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, err
	}

	if user.CurrentWorkspaceID == nil || *user.CurrentWorkspaceID != workspaceID {
		return user.CurrentWorkspaceID, nil
	}

	var remaining models.Member
	err := tx.Where("user_id = ?", userID).
		Order("joined_at ASC").
		First(&remaining).Error

	var next *uint64
	switch {
	case err == nil:
		next = &remaining.WorkspaceID
	case errors.Is(err, gorm.ErrRecordNotFound):
		next = nil
	default:
		return nil, err
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("current_workspace_id", next).Error; err != nil {
		return nil, err
	}

	return next, nil
}
