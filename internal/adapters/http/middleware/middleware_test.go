package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/dto"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

const uuidPattern = `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`

func init() {
	gin.SetMode(gin.TestMode)
}

// withLogger installs a JSON logger over buf as the request logger.
func withLogger(buf *bytes.Buffer) gin.HandlerFunc {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		c.Next()
	}
}

// logLines decodes every JSON record written to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &entry))
		lines = append(lines, entry)
	}

	return lines
}

func TestIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		middleware gin.HandlerFunc
		header     string
		logKey     string
		fromGin    func(*gin.Context) string
		fromCtx    func(context.Context) string
	}{
		{
			name:       "request id",
			middleware: RequestID(),
			header:     HeaderRequestID,
			logKey:     ContextKeyRequestID,
			fromGin:    GetRequestID,
			fromCtx:    RequestIDFromContext,
		},
		{
			name:       "correlation id",
			middleware: CorrelationID(),
			header:     HeaderCorrelationID,
			logKey:     ContextKeyCorrelationID,
			fromGin:    GetCorrelationID,
			fromCtx:    CorrelationIDFromContext,
		},
	}

	inbound := []struct {
		name      string
		value     string
		propagate bool
	}{
		{name: "absent", value: "", propagate: false},
		{name: "caller supplied", value: "pay-7f3a9c", propagate: true},
		{name: "contains spaces", value: "pay 7f3a", propagate: false},
		{name: "control characters", value: "pay\x00id", propagate: false},
		{name: "too long", value: strings.Repeat("a", maxInboundIDLength+1), propagate: false},
	}

	for _, tt := range tests {
		for _, in := range inbound {
			t.Run(tt.name+"/"+in.name, func(t *testing.T) {
				t.Parallel()

				var buf bytes.Buffer
				var ginID, ctxID string

				router := gin.New()
				router.Use(withLogger(&buf), tt.middleware)
				router.GET("/v1/payments/:id", func(c *gin.Context) {
					ginID = tt.fromGin(c)
					ctxID = tt.fromCtx(c.Request.Context())
					logging.FromContext(c.Request.Context()).Info("handled")
					c.Status(http.StatusOK)
				})

				req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1", nil)
				if in.value != "" {
					req.Header.Set(tt.header, in.value)
				}
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				require.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, w.Header().Get(tt.header), ginID)
				assert.Equal(t, ginID, ctxID)

				if in.propagate {
					assert.Equal(t, in.value, ginID)
				} else {
					assert.Regexp(t, uuidPattern, ginID)
				}

				lines := logLines(t, &buf)
				require.Len(t, lines, 1)
				assert.Equal(t, ginID, lines[0][tt.logKey])
			})
		}
	}
}

func TestGetIDs_NotSet(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextKeyRequestID, 123)

	assert.Empty(t, GetRequestID(c))
	assert.Empty(t, GetCorrelationID(c))
	assert.Empty(t, GetAccountID(c))
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		errorCode string
		wantLevel string
	}{
		{name: "success at info", path: "/v1/payments/pay_1", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error at warn", path: "/v1/payments", status: http.StatusUnauthorized, errorCode: dto.ErrorCodeUnauthorized, wantLevel: "WARN"},
		{name: "server error at error", path: "/v1/payments", status: http.StatusInternalServerError, errorCode: dto.ErrorCodeInternal, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			router := gin.New()
			router.Use(withLogger(&buf), Logging(), RequireAccount(nil))
			router.Any("/v1/*rest", func(c *gin.Context) {
				if tt.errorCode != "" {
					dto.AbortWithCode(c, tt.errorCode, "failed")
					return
				}
				c.Status(tt.status)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(defaultAccountHeader, "42")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)

			lines := logLines(t, &buf)
			require.Len(t, lines, 2)

			completed := lines[1]
			assert.Equal(t, "request completed", completed["msg"])
			assert.Equal(t, tt.wantLevel, completed["level"])
			assert.Equal(t, "42", completed["account_id"])
			assert.InDelta(t, float64(tt.status), completed["status"], 0)
			if tt.errorCode != "" {
				assert.Equal(t, tt.errorCode, completed["error_identifier"])
			} else {
				assert.NotContains(t, completed, "error_identifier")
			}
		})
	}

	t.Run("health paths are not logged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		router := gin.New()
		router.Use(withLogger(&buf), Logging())
		router.GET("/-/live", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, buf.String())
	})
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	router := gin.New()
	router.Use(withLogger(&buf), Recovery())
	router.POST("/v1/payments", func(c *gin.Context) {
		panic("card 4242 declined by stub")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/payments", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error_identifier":"P0999","message":"An internal error occurred"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "declined")
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("handler sees the deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(5 * time.Second))
		router.GET("/v1/payments/:id", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hasDeadline)
	})

	t.Run("silent handler past the deadline gets P0998", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/v1/payments/:id", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"error_identifier":"P0998","message":"Request timeout exceeded"}`, w.Body.String())
	})

	t.Run("written response is kept", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/v1/payments/:id", func(c *gin.Context) {
			<-c.Request.Context().Done()
			dto.AbortWithCode(c, dto.ErrorCodeInternal, dto.MessageInternal)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "P0999")
	})
}
