package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

// maxInboundIDLength bounds caller-supplied IDs before they reach logs and
// downstream headers.
const maxInboundIDLength = 128

type idMiddlewareConfig struct {
	headerName string
	contextKey string
	store      func(ctx context.Context, id string) context.Context
}

// createIDMiddleware adopts the caller's ID from headerName when it is
// acceptable and mints a UUID otherwise. The ID is echoed on the response,
// set on the gin context, attached to the request logger and stored for the
// downstream clients.
func createIDMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)
		if !acceptableID(id) {
			id = uuid.NewString()
		}

		c.Set(cfg.contextKey, id)
		c.Header(cfg.headerName, id)

		ctx := logging.WithAttrs(c.Request.Context(), slog.String(cfg.contextKey, id))
		if cfg.store != nil {
			ctx = cfg.store(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// acceptableID reports whether a caller-supplied ID can be propagated as is:
// non-empty, bounded and printable ASCII without spaces.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxInboundIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}

	return true
}

func getIDFromContext(c *gin.Context, key string) string {
	return c.GetString(key)
}
