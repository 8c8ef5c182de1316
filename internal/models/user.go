package models

import "time"

type User struct {
	ID                 uint64     `gorm:"primarykey" json:"id"`
	Name               string     `gorm:"type:varchar(255);not null" json:"name"`
	Email              string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash       string     `gorm:"type:varchar(255);not null" json:"-"`
	EmailVerified      bool       `gorm:"not null;default:false" json:"email_verified"`
	VerificationToken  *string    `gorm:"type:varchar(64);index" json:"-"`
	CurrentWorkspaceID *uint64    `json:"current_workspace_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relations
	CreatedTasks []Task   `gorm:"foreignKey:CreatedBy" json:"-"`
	Memberships  []Member `gorm:"foreignKey:UserID" json:"-"`
}
