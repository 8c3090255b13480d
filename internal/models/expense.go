package models

import "time"

// Expense represents a single spending record.
// Category is an integer identifier; no category table exists, the
// frontend owns the id -> name mapping.
type Expense struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	CategoryID  uint      `gorm:"index;not null"`
	Amount      float64   `gorm:"not null"`
	Description string    `gorm:"size:255"`
	Receipt     string    `gorm:"size:255"` // URL or object key, optional
	Notes       string    `gorm:"type:text"`
	OccurredAt  time.Time `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
