package models

import "time"

// Budget is a per-category monthly spending ceiling.
// At most one budget per (user, category).
type Budget struct {
	ID            uint    `gorm:"primaryKey"`
	UserID        uint    `gorm:"uniqueIndex:idx_budget_user_category;not null"`
	CategoryID    uint    `gorm:"uniqueIndex:idx_budget_user_category;not null"`
	MonthlyAmount float64 `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
