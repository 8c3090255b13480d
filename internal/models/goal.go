package models

import "time"

// Goal is a savings target. Progress is always derived, never stored.
type Goal struct {
	ID            uint    `gorm:"primaryKey"`
	UserID        uint    `gorm:"index;not null"`
	Name          string  `gorm:"size:128;not null"`
	TargetAmount  float64 `gorm:"not null"`
	CurrentAmount float64 `gorm:"not null;default:0"`
	Deadline      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
