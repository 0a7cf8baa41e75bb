package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daeho/careops/internal/database"
	"github.com/daeho/careops/internal/tasks"
	"github.com/daeho/careops/pkg/config"
	"github.com/daeho/careops/pkg/queue"
	"github.com/daeho/careops/pkg/util"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting careops worker")

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Create Asynq server and client
	srv := queue.NewServer(&cfg.Redis, 10)
	client := queue.NewClient(&cfg.Redis)
	defer client.Close()

	// Create task handler
	handler := tasks.NewHandler(db, logger, client)
	if cfg.Maintenance.SanitationOverdueDays > 0 {
		handler.SanitationOverdueDays = cfg.Maintenance.SanitationOverdueDays
	}
	if cfg.Maintenance.ExpiryWindowDays > 0 {
		handler.ExpiryWindowDays = cfg.Maintenance.ExpiryWindowDays
	}

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Enqueue the maintenance tick on its cron schedule
	schedule, err := util.ParseCronSchedule(cfg.Maintenance.CronSpec)
	if err != nil {
		logger.Error("invalid maintenance cron expression", "spec", cfg.Maintenance.CronSpec, "error", err)
		os.Exit(1)
	}
	go func() {
		for {
			next := schedule.Next(time.Now().UTC())
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Until(next)):
			}

			if _, err := client.EnqueueContext(ctx, tasks.NewMaintenanceTickTask()); err != nil {
				logger.Error("failed to enqueue maintenance tick", "error", err)
				continue
			}
			logger.Info("maintenance tick enqueued", "at", next)
		}
	}()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...",
		"maintenance_cron", cfg.Maintenance.CronSpec,
	)

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
