package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crm-backend/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service owns the connection pool to the entity store.
type Service struct {
	db *sql.DB
}

// New opens a pgx-backed connection pool and verifies it with a ping.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Service, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Service{db: db}, nil
}

// DB exposes the underlying pool.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Health reports pool statistics and whether the database answers a ping.
func (s *Service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprint(dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprint(dbStats.InUse)
	stats["idle"] = fmt.Sprint(dbStats.Idle)
	stats["wait_count"] = fmt.Sprint(dbStats.WaitCount)

	return stats
}

// Close releases the pool.
func (s *Service) Close() error {
	return s.db.Close()
}
