package main

import (
	"context"
	"log"
	"os"

	"github.com/guardiao/base-security-service/internal/config"
	"github.com/guardiao/base-security-service/internal/database"
	"github.com/guardiao/base-security-service/internal/password"
	"github.com/guardiao/base-security-service/internal/seeding"
	"github.com/guardiao/base-security-service/internal/store"
	"go.uber.org/zap"
)

// guard-seed: creates the default operator accounts.
// Unlike migrations (which run on startup), seeding is optional and typically runs once.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("database connection", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	// Run migrations first (idempotent)
	if err := database.RunMigrations(ctx, db); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}
	logger.Info("migrations completed")

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "ChangeMe123!" // Default for development
		logger.Warn("using default admin password - set SEED_ADMIN_PASSWORD in production")
	}

	seeder := seeding.New(store.New(db), password.NewHasher(cfg.Security), logger)
	if err := seeder.SeedDefaults(ctx, adminPassword); err != nil {
		logger.Fatal("seeding", zap.Error(err))
	}

	logger.Info("✅ seeding completed successfully")
}
