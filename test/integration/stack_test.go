//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/clients"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/clients/acl"
	apihttp "github.com/jsamuelsen/pay-public-api/internal/adapters/http"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/handlers"
	"github.com/jsamuelsen/pay-public-api/internal/app"
	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
	"github.com/jsamuelsen/pay-public-api/internal/ports"
)

// fakeConnector stands in for the card connector. It echoes the create
// request back as a charge unless a failure status is configured.
type fakeConnector struct {
	mu           sync.Mutex
	createStatus int
	createBody   string
	creates      atomic.Int32
}

func (f *fakeConnector) respondWith(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createStatus = status
	f.createBody = body
}

func (f *fakeConnector) reset() {
	f.respondWith(0, "")
	f.creates.Store(0)
}

func (f *fakeConnector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/healthcheck":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/charges"):
		f.createCharge(w, r)
	case strings.HasSuffix(r.URL.Path, "/charges/missing"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"charge missing not found"}`))
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"charge_id":"ch_1","amount":1000,"reference":"ref","description":"desc","status":"created","links":[]}`))
	}
}

func (f *fakeConnector) createCharge(w http.ResponseWriter, r *http.Request) {
	f.creates.Add(1)

	f.mu.Lock()
	status, body := f.createStatus, f.createBody
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))

		return
	}

	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	req["charge_id"] = "ch_1"
	req["status"] = "created"
	req["links"] = []map[string]string{
		{"rel": "next_url", "method": "GET", "href": "https://card-frontend/secure/abc"},
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(req)
}

// stack is the whole service wired in-process against fakeConnector.
type stack struct {
	api       *httptest.Server
	connector *fakeConnector
	upstream  *httptest.Server
}

// newStack builds the service exactly as main does, minus telemetry export.
func newStack(strategy string) (*stack, error) {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	fake := &fakeConnector{}
	upstream := httptest.NewServer(fake)

	client, err := clients.New(&clients.Config{
		BaseURL:     upstream.URL,
		ServiceName: "connector",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   50,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Logger: logger,
	})
	if err != nil {
		upstream.Close()
		return nil, err
	}

	connector := acl.NewConnectorClient(acl.ConnectorClientConfig{
		Client:      client,
		Translator:  acl.NewTranslator(logger),
		ServiceName: "connector",
		Logger:      logger,
	})

	registry := ports.NewHealthRegistry()
	if err := registry.Register(connector); err != nil {
		upstream.Close()
		return nil, err
	}

	svc := app.NewPaymentService(app.PaymentServiceConfig{Connector: connector, Logger: logger})

	engine := gin.New()
	apihttp.SetupRouter(engine, apihttp.RouterConfig{
		Logger:        logger,
		AuthConfig:    &config.AuthConfig{AccountHeader: config.DefaultAccountHeader},
		AppConfig:     &config.AppConfig{Name: "pay-public-api", Environment: "test", Version: "test"},
		HealthHandler: handlers.NewHealthHandler(registry, handlers.BuildInfo{Version: "test"}),
		PaymentHandler: handlers.NewPaymentHandler(handlers.PaymentHandlerConfig{
			Service:            svc,
			PublicBaseURL:      "https://publicapi.test",
			ValidationStrategy: strategy,
		}),
		Timeout: 5 * time.Second,
	})

	return &stack{
		api:       httptest.NewServer(engine),
		connector: fake,
		upstream:  upstream,
	}, nil
}

func (s *stack) Close() {
	s.api.Close()
	s.upstream.Close()
}
