package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

const dialect = "postgres"

// slogLogger routes goose output through the default slog logger.
type slogLogger struct {
	log *slog.Logger
}

func (l slogLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l slogLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func setupGoose(log *slog.Logger) error {
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	dir, err := fs.Sub(migrationsFS, "sql")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	goose.SetBaseFS(dir)
	goose.SetLogger(slogLogger{log: log})
	return nil
}

// EnsureMigrated applies every pending embedded migration. Already applied versions are skipped,
// so it is safe to call on each start.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()
	log := slog.Default().With("component", "database", "db_host", dbHost)

	log.Info("db migration check", "status", "starting")

	if err := setupGoose(log); err != nil {
		log.Error("db migration failed", "error", err)
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		log.Error("db migration failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("run migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	log.Info("db migration success",
		"version", version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Rollback reverts the most recently applied migration.
func Rollback(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(slog.Default().With("component", "database")); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}
