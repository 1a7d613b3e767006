package middleware

import "github.com/gin-gonic/gin"

const (
	// HeaderCorrelationID is the header name for correlation ID. It spans a
	// whole payment journey across services, where the request ID is per hop.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key and log attribute for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID returns middleware that propagates the caller's correlation
// ID or starts a new one.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		contextKey: ContextKeyCorrelationID,
		store:      ContextWithCorrelationID,
	})
}

// GetCorrelationID returns the correlation ID, or "" when CorrelationID has not run.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}
