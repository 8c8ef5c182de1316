package repository

import (
	"github.com/harukimoto/workspace-hub/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithActivity persists a task and its creation activity atomically
	CreateWithActivity(task *models.Task, activity *models.TaskActivity) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindInWorkspace finds a task by ID scoped to a workspace
	FindInWorkspace(taskID, workspaceID uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListAssignedTo lists tasks in a workspace assigned to a user
	ListAssignedTo(workspaceID, userID uint64) ([]models.Task, error)

	// UpdateWithActivities saves a task and appends its change activities atomically
	UpdateWithActivities(task *models.Task, activities []models.TaskActivity) error

	// DeleteWithActivities deletes a task and all of its activity rows atomically
	DeleteWithActivities(taskID uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	WorkspaceID uint64
	ProjectID   *uint64
	Status      *models.TaskStatus
	AssignedTo  *uint64
	Page        int
	PageSize    int
}

// ActivityRepository defines the interface for reading the activity ledger.
// The ledger is append-only; writes happen only through the task and
// workspace lifecycle transactions.
type ActivityRepository interface {
	// ListByTask returns a task's activity, newest first
	ListByTask(taskID uint64) ([]models.TaskActivity, error)

	// ListByWorkspace returns workspace activity, newest first, paginated,
	// with actor and task preloaded for display
	ListByWorkspace(workspaceID uint64, page, pageSize int) ([]models.TaskActivity, int64, error)
}

// WorkspaceRepository defines the interface for workspace and membership data access
type WorkspaceRepository interface {
	// CreateWithOwner creates a workspace, its owner membership, and points
	// the owner's current workspace at it, within a single transaction
	CreateWithOwner(ws *models.Workspace, owner *models.User) error

	// FindByID finds a workspace by ID
	FindByID(id uint64) (*models.Workspace, error)

	// FindByInviteCode finds a workspace by invite code
	FindByInviteCode(code string) (*models.Workspace, error)

	// Update updates a workspace
	Update(ws *models.Workspace) error

	// DeleteCascade deletes a workspace and every dependent row (projects,
	// tasks, activity, members) in one transaction, repointing the owner's
	// current workspace. Returns the owner's resulting current workspace id.
	DeleteCascade(workspaceID, ownerID uint64) (*uint64, error)

	// AddMember adds a member to a workspace
	AddMember(member *models.Member) error

	// FindMember finds a specific workspace member
	FindMember(workspaceID, userID uint64) (*models.Member, error)

	// UpdateMemberRole changes a member's role
	UpdateMemberRole(workspaceID, userID uint64, role models.WorkspaceRole) error

	// RemoveMemberWithTasks removes a member and disposes of their assigned
	// tasks (transfer when transferTo is set, delete otherwise) in one
	// transaction, repointing the target's current workspace if needed.
	// Returns the number of tasks affected.
	RemoveMemberWithTasks(workspaceID, targetID uint64, transferTo *uint64) (int64, error)

	// ListMembers lists all members of a workspace
	ListMembers(workspaceID uint64) ([]models.Member, error)

	// ListMembershipsByUser lists all workspaces a user is a member of
	ListMembershipsByUser(userID uint64) ([]models.Member, error)
}

// ProjectRepository defines the interface for project data access.
// Projects are consumed read-only by the task engine.
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// ListByWorkspace lists all projects in a workspace
	ListByWorkspace(workspaceID uint64) ([]models.Project, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByVerificationToken finds a user by their email verification token
	FindByVerificationToken(token string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error
}
