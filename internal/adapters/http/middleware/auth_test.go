package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
)

// TestRequireAccount tests the gateway account middleware.
func TestRequireAccount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cfg         *config.AuthConfig
		header      string
		value       string
		wantStatus  int
		wantAccount string
	}{
		{
			name:        "default header present",
			header:      defaultAccountHeader,
			value:       "42",
			wantStatus:  http.StatusOK,
			wantAccount: "42",
		},
		{
			name:        "configured header present",
			cfg:         &config.AuthConfig{AccountHeader: "X-Account"},
			header:      "X-Account",
			value:       " 7 ",
			wantStatus:  http.StatusOK,
			wantAccount: "7",
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "blank header",
			header:     defaultAccountHeader,
			value:      "   ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong header for configuration",
			cfg:        &config.AuthConfig{AccountHeader: "X-Account"},
			header:     defaultAccountHeader,
			value:      "42",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ginAccount, ctxAccount string

			router := gin.New()
			router.Use(RequireAccount(tt.cfg))
			router.GET("/v1/payments/:id", func(c *gin.Context) {
				ginAccount = GetAccountID(c)
				ctxAccount = AccountIDFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/payments/abc", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAccount, ginAccount)
			assert.Equal(t, tt.wantAccount, ctxAccount)

			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error_identifier":"P0401","message":"Credentials are required to access this service"}`, w.Body.String())
			}
		})
	}
}

// TestAccountIDFromContext_NilContext tests nil context handling.
func TestAccountIDFromContext_NilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // Testing nil context handling
	assert.Empty(t, AccountIDFromContext(nil))
}
