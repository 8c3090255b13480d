package models

import "time"

// Notification types emitted by mutation paths.
const (
	NotifyExpenseAdded    = "expense:added"
	NotifyBudgetThreshold = "budget:threshold"
	NotifyGoalCompleted   = "goal:completed"
	NotifySubscription    = "subscription:event"
)

// Notification is an informational record shown to the user.
// Payload holds a JSON blob whose shape depends on Type.
type Notification struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	Type        string `gorm:"size:32;index;not null"`
	Title       string `gorm:"size:128;not null"`
	Description string `gorm:"size:255"`
	Payload     string `gorm:"type:text"`
	Read        bool   `gorm:"index;not null;default:false"`
	CreatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
