package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/handlers"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
	"github.com/jsamuelsen/pay-public-api/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the base logger placed in every request context.
	Logger *slog.Logger

	// AuthConfig names the gateway account header.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// PaymentHandler handles /v1/payments. Routes are skipped when nil.
	PaymentHandler *handlers.PaymentHandler

	// AgreementHandler handles /v1/agreements. Routes are skipped when nil.
	AgreementHandler *handlers.AgreementHandler

	// RateLimiter throttles each account. Nil disables rate limiting.
	RateLimiter *middleware.AccountRateLimiter

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Base logger - seeds the request context logger
//  2. Recovery - catch panics
//  3. Request ID - generate/extract request ID
//  4. Correlation ID - handle distributed tracing correlation
//  5. OpenTelemetry - server span, then request metrics and X-Trace-ID
//  6. Logging - request logging (skips health endpoints)
//
// Route groups:
//   - /-/ (internal): Health endpoints, no account required
//   - /v1/ (public API): timeout, account, then rate limit
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		baseLogger(cfg.Logger),
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(serviceName(cfg.AppConfig)),
		telemetry.Middleware(serviceName(cfg.AppConfig)),
		middleware.Logging(),
	)

	// Health endpoints have no account and no timeout
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.Mount(engine)
	}

	v1 := engine.Group("/v1")
	if cfg.Timeout > 0 {
		v1.Use(middleware.Timeout(cfg.Timeout))
	}

	v1.Use(middleware.RequireAccount(cfg.AuthConfig))

	if cfg.RateLimiter != nil {
		v1.Use(cfg.RateLimiter.Middleware())
	}

	setupAPIRoutes(v1, cfg)
}

// setupAPIRoutes registers the public payment endpoints.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.PaymentHandler != nil {
		cfg.PaymentHandler.RegisterPaymentRoutes(rg)
	}

	if cfg.AgreementHandler != nil {
		cfg.AgreementHandler.RegisterAgreementRoutes(rg)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		baseLogger(logger),
		middleware.Recovery(),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.Mount(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AuthConfig:    authCfg,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}

// baseLogger stores logger in the request context so later middleware
// enriches it instead of slog.Default().
func baseLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger != nil {
			c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		}

		c.Next()
	}
}

func serviceName(cfg *config.AppConfig) string {
	if cfg == nil || cfg.Name == "" {
		return "pay-public-api"
	}

	return cfg.Name
}
