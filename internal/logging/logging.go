// Package logging installs the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options configures Setup. Zero values give a text logger at info level on stdout.
type Options struct {
	Development bool
	Level       string
	SentryDSN   string
	Environment string
	Writer      io.Writer
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// New builds the logger: text in development, JSON otherwise. With a Sentry DSN,
// error records also fan out to Sentry. The returned flush func must run before exit.
func New(opts Options) (*slog.Logger, func(), error) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var base slog.Handler
	if opts.Development {
		base = slog.NewTextHandler(w, hopts)
	} else {
		base = slog.NewJSONHandler(w, hopts)
	}

	flush := func() {}
	if opts.SentryDSN == "" {
		return slog.New(base), flush, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Environment: opts.Environment,
	}); err != nil {
		return nil, nil, fmt.Errorf("init sentry: %w", err)
	}
	flush = func() { sentry.Flush(2 * time.Second) }

	handler := slogmulti.Fanout(
		base,
		slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
	)
	return slog.New(handler), flush, nil
}

// Setup builds the logger with New and makes it the slog default.
func Setup(opts Options) (func(), error) {
	log, flush, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return flush, nil
}
