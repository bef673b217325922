package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumenhq/paysvc/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	logger.Info("Creating PostgreSQL extensions...")
	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	// Custom types must exist before auto-migrate references them
	logger.Info("Creating custom PostgreSQL types...")
	if err := createCustomTypes(db); err != nil {
		logger.Error("Failed to create custom types", zap.Error(err))
		return err
	}

	logger.Info("Running GORM auto-migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Subscription{},
		&model.Plan{},
		&model.Payment{},
		&model.WebhookEvent{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	logger.Info("Creating custom indexes...")
	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return nil
}

// createCustomTypes creates custom PostgreSQL types
func createCustomTypes(db *gorm.DB) error {
	var exists bool
	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'plan_status')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE plan_status AS ENUM ('active', 'trialing', 'past_due', 'canceled', 'unpaid', 'incomplete', 'incomplete_expired', 'paused')`).Error; err != nil {
			return err
		}
	}
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// Partial index for the unprocessed-event backlog scan
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_events_unprocessed ON webhook_events (received_at) WHERE processed = false`).Error; err != nil {
		return err
	}

	// Payment history is always read newest first per user
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payments_user_created_at ON payments (user_id, created_at DESC)`).Error; err != nil {
		return err
	}

	return nil
}
