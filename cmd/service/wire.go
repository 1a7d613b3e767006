package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/clients"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/clients/acl"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/http"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/handlers"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen/pay-public-api/internal/app"
	"github.com/jsamuelsen/pay-public-api/internal/domain/payment"
	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
	"github.com/jsamuelsen/pay-public-api/internal/ports"
)

// service is the assembled process: the HTTP server and everything
// reachable from its routes.
type service struct {
	server *http.Server
}

// wire builds the connector clients, application services and router.
// Background work started here, such as rate limiter eviction, stops when
// ctx is cancelled.
func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service, error) {
	translator := acl.NewTranslator(logger)

	cardHTTP, err := connectorClient(cfg, cfg.Services.Connector, logger)
	if err != nil {
		return nil, err
	}

	ddHTTP, err := connectorClient(cfg, cfg.Services.DirectDebitConnector, logger)
	if err != nil {
		return nil, err
	}

	card := acl.NewConnectorClient(acl.ConnectorClientConfig{
		Client:      cardHTTP,
		Translator:  translator,
		ServiceName: cfg.Services.Connector.Name,
		Logger:      logger,
	})
	directDebit := acl.NewDirectDebitClient(acl.DirectDebitClientConfig{
		Client:      ddHTTP,
		Translator:  translator,
		ServiceName: cfg.Services.DirectDebitConnector.Name,
		Logger:      logger,
	})

	readiness := ports.NewHealthRegistry()
	for _, c := range []ports.HealthChecker{card, directDebit} {
		if err := readiness.Register(c); err != nil {
			return nil, fmt.Errorf("registering readiness check %s: %w", c.Name(), err)
		}
	}

	payments := app.NewPaymentService(app.PaymentServiceConfig{
		Connector: card,
		Parser: payment.NewParser(payment.ParserConfig{
			Logger:                  logger,
			AllowInsecureReturnURLs: cfg.Payments.AllowInsecureReturnURLs,
		}),
		Logger: logger,
	})
	agreements := app.NewAgreementService(app.AgreementServiceConfig{Connector: directDebit, Logger: logger})

	var limiter *middleware.AccountRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewAccountRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:     logger,
		AuthConfig: &cfg.Auth,
		AppConfig:  &cfg.App,
		HealthHandler: handlers.NewHealthHandler(readiness, handlers.NewBuildInfo(Version, Commit, BuildTime)).
			WithReadinessTimeout(cfg.Client.Timeout),
		PaymentHandler: handlers.NewPaymentHandler(handlers.PaymentHandlerConfig{
			Service:            payments,
			PublicBaseURL:      cfg.Payments.PublicBaseURL,
			ValidationStrategy: cfg.Payments.ValidationStrategy,
		}),
		AgreementHandler: handlers.NewAgreementHandler(agreements, cfg.Payments.PublicBaseURL),
		RateLimiter:      limiter,
		Timeout:          http.DefaultRequestTimeout,
	})

	return &service{server: server}, nil
}

func connectorClient(cfg *config.Config, svc config.ServiceEndpointConfig, logger *slog.Logger) (*clients.Client, error) {
	c, err := clients.New(&clients.Config{
		BaseURL:     svc.BaseURL,
		ServiceName: svc.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building %s client: %w", svc.Name, err)
	}

	return c, nil
}
