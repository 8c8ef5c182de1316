package models

import "time"

type ActivityAction string

const (
	ActivityTaskCreated        ActivityAction = "created"
	ActivityPriorityChanged    ActivityAction = "priority_changed"
	ActivityStatusChanged      ActivityAction = "status_changed"
	ActivityAssigneeChanged    ActivityAction = "assignee_changed"
	ActivityTitleChanged       ActivityAction = "title_changed"
	ActivityDescriptionChanged ActivityAction = "description_changed"
	ActivityDueDateChanged     ActivityAction = "due_date_changed"
)

// TaskActivity is an append-only audit record. Rows are never updated;
// they are removed only when their parent task or workspace is deleted.
type TaskActivity struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	TaskID      uint64         `gorm:"not null;index" json:"task_id"`
	WorkspaceID uint64         `gorm:"not null;index" json:"workspace_id"`
	UserID      uint64         `gorm:"not null" json:"user_id"`
	Action      ActivityAction `gorm:"type:varchar(40);not null" json:"action"`
	Field       string         `gorm:"type:varchar(40)" json:"field,omitempty"`
	OldValue    string         `gorm:"type:text" json:"old_value,omitempty"`
	NewValue    string         `gorm:"type:text" json:"new_value,omitempty"`
	Description string         `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
