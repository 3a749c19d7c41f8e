package main

import (
	"context"
	"log"

	"github.com/guardiao/base-security-service/internal/config"
	"github.com/guardiao/base-security-service/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close(db) //nolint:errcheck

	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations completed")
}
