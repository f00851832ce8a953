package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// MigrationsDir is the directory of the embedded migration files.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations executes all pending database migrations
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	if err := setupGoose(); err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", MigrationsDir))

	if err := goose.Up(db, MigrationsDir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	logger.Info("Migrations completed successfully", zap.Int64("version", version))
	return nil
}

// GetMigrationStatus returns the current migration status
func GetMigrationStatus(db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	return goose.Status(db, MigrationsDir)
}

func setupGoose() error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}
