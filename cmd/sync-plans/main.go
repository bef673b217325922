package main

import (
	"context"
	"log"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/lumenhq/paysvc/internal/config"
	"github.com/lumenhq/paysvc/internal/infrastructure/database"
	"github.com/lumenhq/paysvc/internal/infrastructure/logger"
	"github.com/lumenhq/paysvc/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize Stripe
	stripe.Key = cfg.Service.StripeSecretKey

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Create plan sync service
	planSync := usecase.NewPlanSyncService(repos.Plan, zapLogger)

	ctx := context.Background()

	productsSynced, err := syncStripePlans(ctx, planSync, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to sync Stripe plans", zap.Error(err))
	}

	zapLogger.Info("Initial sync completed",
		zap.Int("products_synced", productsSynced))
}
