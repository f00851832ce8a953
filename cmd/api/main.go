package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"crm-backend/internal/config"
	"crm-backend/internal/database"
	"crm-backend/internal/logger"
	"crm-backend/internal/server"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// In-flight requests get 30 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	migrationStatus := pflag.Bool("migration-status", false, "print the applied migrations and exit")
	pflag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting CRM API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.Bool("decrement_stock", cfg.Orders.DecrementStock),
	)

	ctx := context.Background()

	dbService, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database health check", zap.Any("health", dbService.Health(ctx)))

	if *migrationStatus {
		if err := database.GetMigrationStatus(dbService.DB()); err != nil {
			log.Fatal("Failed to read migration status", zap.Error(err))
		}
		dbService.Close()
		return
	}

	if err := database.RunMigrations(dbService.DB(), log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully")

	srv := server.NewServer(cfg, log, dbService)

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
