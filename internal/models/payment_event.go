package models

import "time"

// PaymentEvent records processed webhook event ids so redelivered
// events are ignored.
type PaymentEvent struct {
	ID          string `gorm:"primaryKey;size:64"` // provider event id
	Type        string `gorm:"size:64;not null"`
	UserID      uint   `gorm:"index"`
	ProcessedAt time.Time
}
