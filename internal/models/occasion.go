package models

import "time"

// Occasion is a budgeted, date-anchored event (holiday, birthday).
// Spent is a caller-maintained running total, not recomputed from expenses.
type Occasion struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Name      string    `gorm:"size:128;not null"`
	Date      time.Time `gorm:"index;not null"`
	Budget    float64   `gorm:"default:0"`
	Spent     float64   `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
