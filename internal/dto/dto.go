package dto

import (
	"time"

	"github.com/harukimoto/workspace-hub/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                 uint64  `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	EmailVerified      bool    `json:"email_verified"`
	CurrentWorkspaceID *uint64 `json:"current_workspace_id"`
}

// ToUserDTO converts a User model
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		EmailVerified:      user.EmailVerified,
		CurrentWorkspaceID: user.CurrentWorkspaceID,
	}
}

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID          uint64                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	OwnerID     uint64                 `json:"owner_id"`
	InviteCode  string                 `json:"invite_code,omitempty"`
	Rules       models.AssignmentRules `json:"assignment_rules"`
}

// ToWorkspaceDTO converts a Workspace model
func ToWorkspaceDTO(ws models.Workspace) WorkspaceDTO {
	return WorkspaceDTO{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		OwnerID:     ws.OwnerID,
		InviteCode:  ws.InviteCode,
		Rules:       ws.Rules,
	}
}

// MemberDTO represents a workspace member in API responses
type MemberDTO struct {
	UserID   uint64               `json:"user_id"`
	Role     models.WorkspaceRole `json:"role"`
	JoinedAt time.Time            `json:"joined_at"`
	User     *UserDTO             `json:"user,omitempty"`
}

// ToMemberDTO converts a Member model
func ToMemberDTO(member models.Member) MemberDTO {
	dto := MemberDTO{
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}
	return dto
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	ProjectID   uint64              `json:"project_id"`
	WorkspaceID uint64              `json:"workspace_id"`
	AssignedTo  *uint64             `json:"assigned_to"`
	CreatedBy   uint64              `json:"created_by"`
	DueDate     *time.Time          `json:"due_date"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Creator     *UserDTO            `json:"creator,omitempty"`
	Assignee    *UserDTO            `json:"assignee,omitempty"`
}

// ToTaskDTO converts a Task model
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		ProjectID:   task.ProjectID,
		WorkspaceID: task.WorkspaceID,
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}
	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = ToTaskDTO(t)
	}
	return dtos
}

// ActivityDTO represents a task activity entry in API responses
type ActivityDTO struct {
	ID          uint64                `json:"id"`
	TaskID      uint64                `json:"task_id"`
	WorkspaceID uint64                `json:"workspace_id"`
	UserID      uint64                `json:"user_id"`
	Action      models.ActivityAction `json:"action"`
	Field       string                `json:"field,omitempty"`
	OldValue    string                `json:"old_value,omitempty"`
	NewValue    string                `json:"new_value,omitempty"`
	Description string                `json:"description"`
	CreatedAt   time.Time             `json:"created_at"`
	Actor       *UserDTO              `json:"actor,omitempty"`
	TaskTitle   string                `json:"task_title,omitempty"`
}

// ToActivityDTO converts a TaskActivity model
func ToActivityDTO(a models.TaskActivity) ActivityDTO {
	dto := ActivityDTO{
		ID:          a.ID,
		TaskID:      a.TaskID,
		WorkspaceID: a.WorkspaceID,
		UserID:      a.UserID,
		Action:      a.Action,
		Field:       a.Field,
		OldValue:    a.OldValue,
		NewValue:    a.NewValue,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
	}
	if a.User.ID != 0 {
		actor := ToUserDTO(a.User)
		dto.Actor = &actor
	}
	if a.Task.ID != 0 {
		dto.TaskTitle = a.Task.Title
	}
	return dto
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []models.TaskActivity) []ActivityDTO {
	dtos := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = ToActivityDTO(a)
	}
	return dtos
}
