// Command migrate applies the embedded schema migrations, or reverts the latest one with -down.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"cloudvault/internal/config"
	"cloudvault/internal/database"
	"cloudvault/internal/database/migration"
	"cloudvault/internal/logging"
)

func main() {
	down := flag.Bool("down", false, "revert the most recently applied migration")
	flag.Parse()

	cfg := config.Load()
	flush, err := logging.Setup(logging.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Observability.LogLevel,
	})
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer flush()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if *down {
		err = migration.Rollback(ctx, db.DB)
	} else {
		err = migration.EnsureMigrated(ctx, db.DB, cfg.Database.Host)
	}
	if err != nil {
		slog.Error("migration failed", "error", err)
		db.Close()
		flush()
		os.Exit(1)
	}
}
