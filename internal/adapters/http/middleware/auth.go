package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/dto"
	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

const (
	// ContextKeyAccountID is the gin context key for the authenticated account.
	ContextKeyAccountID = "account_id"

	// defaultAccountHeader is used when no header is configured.
	defaultAccountHeader = config.DefaultAccountHeader
)

// RequireAccount returns middleware that requires the gateway to have
// authenticated an account. The gateway validates the API key and passes
// the account ID in a header; a missing or blank header is a 401 P0401.
func RequireAccount(cfg *config.AuthConfig) gin.HandlerFunc {
	header := defaultAccountHeader
	if cfg != nil && cfg.AccountHeader != "" {
		header = cfg.AccountHeader
	}

	return func(c *gin.Context) {
		accountID := strings.TrimSpace(c.GetHeader(header))
		if accountID == "" {
			logging.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "request without account",
				slog.String("header", header),
				slog.String("path", c.Request.URL.Path))
			dto.AbortWithCode(c, dto.ErrorCodeUnauthorized, dto.MessageUnauthorized)

			return
		}

		c.Set(ContextKeyAccountID, accountID)

		ctx := ContextWithAccountID(c.Request.Context(), accountID)
		c.Request = c.Request.WithContext(logging.WithAttrs(ctx, slog.String("account_id", accountID)))

		c.Next()
	}
}

// GetAccountID returns the authenticated account from the gin context.
// Returns empty string if RequireAccount has not run.
func GetAccountID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyAccountID)
}
