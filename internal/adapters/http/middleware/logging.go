package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
	"github.com/jsamuelsen/pay-public-api/internal/platform/telemetry"
)

// Logging returns the access log middleware. The completion record is
// written with the logger as enriched by later middleware, so it carries the
// account, and it names the error identifier of any error response.
// Health paths under /-/ are not logged.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/-/") {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		logging.FromContext(c.Request.Context()).Debug("request started",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
		}
		if code := c.GetString(telemetry.ContextKeyErrorIdentifier); code != "" {
			attrs = append(attrs, slog.String("error_identifier", code))
		}

		ctx := c.Request.Context()
		logging.FromContext(ctx).LogAttrs(ctx, accessLevel(status), "request completed", attrs...)
	}
}

// accessLevel maps a response status to the access log level.
func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
