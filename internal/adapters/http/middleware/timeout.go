package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/dto"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

// Timeout puts a deadline on the request context. Handlers and downstream
// clients observe it through ctx; the handler runs on the request goroutine
// and is never abandoned. If the handler returns past the deadline without
// writing a response, the request is answered with 503 P0998.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if c.Writer.Written() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}

		logging.FromContext(ctx).Warn("request deadline exceeded",
			slog.String("path", c.Request.URL.Path),
			slog.String("method", c.Request.Method),
			slog.Duration("timeout", timeout),
		)
		dto.AbortWithCode(c, dto.ErrorCodeTimeout, dto.MessageTimeout)
	}
}
