// Command cleanup is a one-shot maintenance job meant for cron: it deactivates expired
// shares and permanently deletes files that sat in the trash past the retention window.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"cloudvault/internal/config"
	"cloudvault/internal/database"
	"cloudvault/internal/logging"
	"cloudvault/internal/metrics"
	"cloudvault/internal/preview"
	"cloudvault/internal/repository/postgres"
	"cloudvault/internal/service"
	"cloudvault/internal/storage"
)

func main() {
	cfg := config.Load()

	flush, err := logging.Setup(logging.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Observability.LogLevel,
		SentryDSN:   cfg.Observability.SentryDSN,
		Environment: cfg.Env,
	})
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("cleanup failed", "error", err)
		flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	// nothing scrapes a one-shot job
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	fileRepo := postgres.NewFilePostgres(db)
	fileSvc := service.NewFileService(objStore, fileRepo, preview.New(preview.DefaultOptions), service.FileOptions{Metrics: m})
	shareSvc := service.NewShareService(postgres.NewSharePostgres(db), fileRepo, objStore, service.ShareOptions{Metrics: m})

	start := time.Now()
	swept, err := shareSvc.SweepExpired(ctx)
	if err != nil {
		return err
	}

	retention := time.Duration(cfg.Trash.RetentionDays) * 24 * time.Hour
	purged := 0
	if cfg.Trash.RetentionDays > 0 {
		if purged, err = fileSvc.PurgeExpiredTrash(ctx, retention); err != nil {
			return err
		}
	}

	slog.Info("cleanup finished",
		"shares_deactivated", swept,
		"files_purged", purged,
		"retention_days", cfg.Trash.RetentionDays,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
