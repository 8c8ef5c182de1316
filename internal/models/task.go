package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	ProjectID   uint64       `gorm:"not null" json:"project_id"`
	WorkspaceID uint64       `gorm:"not null" json:"workspace_id"`
	AssignedTo  *uint64      `json:"assigned_to"`
	CreatedBy   uint64       `gorm:"not null" json:"created_by"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Project   Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Workspace Workspace      `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Assignee  *User          `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Creator   User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Activity  []TaskActivity `gorm:"foreignKey:TaskID" json:"activity,omitempty"`
}
