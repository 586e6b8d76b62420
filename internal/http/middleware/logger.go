package middleware

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"docflow/internal/logger"
)

// Logger is a middleware that logs each HTTP request as one JSON line on stdout.
// Timestamps are rendered in loc.
func Logger(loc *time.Location) fiber.Handler {
	return LoggerWithWriter(os.Stdout, loc)
}

// LoggerWithWriter is Logger writing to w.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
// - ts
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	log := logger.New(w, "info", loc)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Collect fields after handler executed to capture final status
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		latency := float64(time.Since(start).Microseconds()) / 1000

		log.InfoContext(c.UserContext(), "http_request",
			"request_id", rid,
			"method", c.Method(),
			// Use only the path segment (no query string)
			"path", c.Path(),
			"status", status,
			"latency", latency,
		)
		return err
	}
}
