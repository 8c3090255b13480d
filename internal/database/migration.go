package database

import (
	"fmt"

	"finledger/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Expense{},
		&models.Budget{},
		&models.Goal{},
		&models.Occasion{},
		&models.Group{},
		&models.GroupMember{},
		&models.Notification{},
		&models.PaymentEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
