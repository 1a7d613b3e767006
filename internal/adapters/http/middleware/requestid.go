// Package middleware holds the gin middleware of the public API: request
// and correlation IDs, account authentication, rate limiting, timeouts,
// access logging and panic recovery.
package middleware

import "github.com/gin-gonic/gin"

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key and log attribute for the request ID.
	ContextKeyRequestID = "request_id"
)

// RequestID returns middleware that adopts or generates the per-request ID.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderRequestID,
		contextKey: ContextKeyRequestID,
		store:      ContextWithRequestID,
	})
}

// GetRequestID returns the request ID, or "" when RequestID has not run.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}
