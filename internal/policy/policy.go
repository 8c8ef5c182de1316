package policy

import (
	"errors"

	"github.com/harukimoto/workspace-hub/internal/models"
)

// Permission is a named capability attached to a workspace role.
type Permission string

const (
	PermCreateTask              Permission = "CREATE_TASK"
	PermEditTask                Permission = "EDIT_TASK"
	PermViewOnly                Permission = "VIEW_ONLY"
	PermChangeMemberRole        Permission = "CHANGE_MEMBER_ROLE"
	PermRemoveMember            Permission = "REMOVE_MEMBER"
	PermDeleteWorkspace         Permission = "DELETE_WORKSPACE"
	PermManageWorkspaceSettings Permission = "MANAGE_WORKSPACE_SETTINGS"
	PermEditWorkspace           Permission = "EDIT_WORKSPACE"
)

// rolePermissions holds each role's explicit permission set. Roles are flat
// reference data; owner's set is a superset by enumeration, not delegation.
var rolePermissions = map[models.WorkspaceRole]map[Permission]struct{}{
	models.RoleOwner: permSet(
		PermCreateTask, PermEditTask, PermViewOnly,
		PermChangeMemberRole, PermRemoveMember,
		PermDeleteWorkspace, PermManageWorkspaceSettings, PermEditWorkspace,
	),
	models.RoleAdmin: permSet(
		PermCreateTask, PermEditTask, PermViewOnly, PermEditWorkspace,
	),
	models.RoleMember: permSet(
		PermCreateTask, PermEditTask, PermViewOnly,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

var (
	ErrPermissionDenied = errors.New("role does not grant the required permission")

	// Assignment denials carry a distinct message per blocked direction.
	ErrMemberAssignToOwner = errors.New("members are not allowed to assign tasks to owners in this workspace")
	ErrMemberAssignToAdmin = errors.New("members are not allowed to assign tasks to admins in this workspace")
	ErrAdminAssignToOwner  = errors.New("admins are not allowed to assign tasks to owners in this workspace")
)

// RequirePermission fails unless the role's permission set intersects the
// required permissions. The check is a flat set lookup, not inheritance.
func RequirePermission(role models.WorkspaceRole, required ...Permission) error {
	set := rolePermissions[role]
	for _, p := range required {
		if _, ok := set[p]; ok {
			return nil
		}
	}
	return ErrPermissionDenied
}

// HasPermission reports whether the role grants the permission.
func HasPermission(role models.WorkspaceRole, p Permission) bool {
	_, ok := rolePermissions[role][p]
	return ok
}

// CanAssign evaluates whether a user with creatorRole may assign a task to a
// user with assigneeRole under the workspace's assignment rules. Upward
// assignment is gated by the three rule flags; same-level and downward
// assignment is always allowed.
func CanAssign(creatorRole, assigneeRole models.WorkspaceRole, rules models.AssignmentRules) error {
	switch {
	case creatorRole == models.RoleMember && assigneeRole == models.RoleOwner:
		if !rules.MembersCanAssignToOwners {
			return ErrMemberAssignToOwner
		}
	case creatorRole == models.RoleMember && assigneeRole == models.RoleAdmin:
		if !rules.MembersCanAssignToAdmins {
			return ErrMemberAssignToAdmin
		}
	case creatorRole == models.RoleAdmin && assigneeRole == models.RoleOwner:
		if !rules.AdminsCanAssignToOwners {
			return ErrAdminAssignToOwner
		}
	}
	return nil
}

// EditScope describes what a requester may change on a task.
type EditScope struct {
	AllFields  bool
	StatusOnly bool
}

// EditScopeFor computes the requester's edit rights on a task. Creators and
// workspace owners may edit every field; assignees may additionally change
// only the status.
func EditScopeFor(task *models.Task, requesterID uint64, requesterRole models.WorkspaceRole) EditScope {
	allFields := task.CreatedBy == requesterID || requesterRole == models.RoleOwner
	statusOnly := allFields || (task.AssignedTo != nil && *task.AssignedTo == requesterID)
	return EditScope{AllFields: allFields, StatusOnly: statusOnly}
}

// CanDeleteTask reports whether the requester may delete a task. Deletion is
// deliberately stricter than editing: assignees get no rights here.
func CanDeleteTask(task *models.Task, requesterID uint64, requesterRole models.WorkspaceRole) bool {
	return task.CreatedBy == requesterID || requesterRole == models.RoleOwner
}
