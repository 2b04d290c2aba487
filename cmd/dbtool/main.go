package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"route-assignment-service/internal/adapters/repositories"
	"route-assignment-service/internal/config"
	"route-assignment-service/internal/platform/db"
	"route-assignment-service/internal/platform/obs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	log, err := obs.NewLogger(config.Get("APP_ENV", "development"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("No .env file found (using environment variables)")
	}

	if err := run(log); err != nil {
		log.Error("dbtool failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.Logger) error {
	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	database, err := db.Open(databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	return initAndSeed(log, database, config.Get("SEED_PATH", "data/seeds/demo.json"))
}

func initAndSeed(log *zap.Logger, database *sql.DB, seedPath string) error {
	log.Info("Initializing database schema...")
	if err := repositories.InitSchema(database); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("Schema ready.")

	log.Info("Seeding database...", zap.String("path", seedPath))
	if err := repositories.SeedFromJSON(database, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("Seeding complete.")

	return nil
}
