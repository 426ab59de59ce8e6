package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// postcodeLocal is set by the assessment handler once the request body
// has been parsed, so the access line can name the surveyed postcode.
const postcodeLocal = "assessment_postcode"

// AccessLogMiddleware writes one structured line per request through
// the request-scoped logger, so assessment lines carry the request ID
// and postcode. Failed requests are raised to WARN or ERROR.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		path := c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if postcode, ok := c.Locals(postcodeLocal).(string); ok && postcode != "" {
			attrs = append(attrs, slog.String("postcode", postcode))
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		LoggerFromCtx(c.UserContext()).LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}
