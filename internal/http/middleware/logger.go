package middleware

import (
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger writes one access record per request to the default slog logger.
func Logger() fiber.Handler {
	return accessLog(func() *slog.Logger { return slog.Default() })
}

// LoggerWithWriter writes access records as JSON lines to w.
func LoggerWithWriter(w io.Writer) fiber.Handler {
	log := slog.New(slog.NewJSONHandler(w, nil))
	return accessLog(func() *slog.Logger { return log })
}

func accessLog(logger func() *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// The global error handler has not run yet, so derive the status from err.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		logger().LogAttrs(c.UserContext(), level, "http request",
			slog.String("request_id", RequestIDFrom(c)),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
		)
		return err
	}
}
