package models

import "time"

// AssignmentRules gates cross-role task assignment per workspace.
// All flags default to false (most restrictive).
type AssignmentRules struct {
	MembersCanAssignToOwners bool `gorm:"not null;default:false" json:"members_can_assign_to_owners"`
	MembersCanAssignToAdmins bool `gorm:"not null;default:false" json:"members_can_assign_to_admins"`
	AdminsCanAssignToOwners  bool `gorm:"not null;default:false" json:"admins_can_assign_to_owners"`
}

type Workspace struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	OwnerID     uint64          `gorm:"not null" json:"owner_id"`
	InviteCode  string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	Rules       AssignmentRules `gorm:"embedded" json:"assignment_rules"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	Owner    User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members  []Member  `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Projects []Project `gorm:"foreignKey:WorkspaceID" json:"projects,omitempty"`
	Tasks    []Task    `gorm:"foreignKey:WorkspaceID" json:"tasks,omitempty"`
}
