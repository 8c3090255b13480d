package models

import "time"

// Group member roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Group is a shared context in which multiple users pool expenses.
// Ownership keys off CreatedByID, not a user_id column.
type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:128;not null"`
	Description string `gorm:"size:255"`
	CreatedByID uint   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GroupMember binds a user to a group with a role.
type GroupMember struct {
	ID        uint   `gorm:"primaryKey"`
	GroupID   uint   `gorm:"uniqueIndex:idx_member_group_user;not null"`
	UserID    uint   `gorm:"uniqueIndex:idx_member_group_user;not null"`
	Role      string `gorm:"size:16;not null"`
	CreatedAt time.Time

	Group Group `gorm:"constraint:OnDelete:CASCADE"`
	User  User  `gorm:"constraint:OnDelete:CASCADE"`
}
