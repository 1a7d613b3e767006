package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/pay-public-api/internal/adapters/clients"

	defaultTimeout = 30 * time.Second

	contentTypeJSON = "application/json"
)

// Config configures the client for one downstream connector.
type Config struct {
	// BaseURL prefixes every request path, e.g. "http://connector:9300".
	BaseURL string

	// ServiceName names the downstream in logs, spans, metrics and errors.
	ServiceName string

	// Timeout bounds a single attempt. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	Logger *slog.Logger
}

// Client calls one downstream connector. Every call goes through the
// downstream's circuit breaker, carries the request and correlation IDs and
// the trace context, and is traced and measured. GETs are retried with
// jittered exponential backoff; POSTs are sent exactly once so a charge is
// never created twice.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	retry       config.RetryConfig
	cb          *CircuitBreaker
	tracer      trace.Tracer

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a client. ServiceName is required.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cb := NewCircuitBreaker(cfg.ServiceName, cfg.Circuit, WithStateListener(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("downstream", cfg.ServiceName),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}))

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of downstream connector calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Downstream connector calls by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http:            &http.Client{Timeout: timeout, Transport: newTransport(cfg.Transport)},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName:     cfg.ServiceName,
		retry:           cfg.Retry,
		cb:              cb,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

func newTransport(tc config.TransportConfig) *http.Transport {
	if tc.MaxIdleConns <= 0 {
		tc.MaxIdleConns = config.DefaultTransportMaxIdleConns
	}

	if tc.MaxIdleConnsPerHost <= 0 {
		tc.MaxIdleConnsPerHost = config.DefaultTransportMaxIdleConnsPerHost
	}

	if tc.IdleConnTimeout <= 0 {
		tc.IdleConnTimeout = config.DefaultTransportIdleConnTimeout
	}

	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        tc.MaxIdleConns,
		MaxIdleConnsPerHost: tc.MaxIdleConnsPerHost,
		IdleConnTimeout:     tc.IdleConnTimeout,
	}
}

// Get fetches path. Transport errors and 5xx responses are retried up to
// Retry.MaxAttempts; the final 5xx response is returned for translation.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.call(ctx, http.MethodGet, path, nil)
}

// Post sends body as JSON to path once. The response is returned whatever
// its status.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	return c.call(ctx, http.MethodPost, path, body)
}

// CircuitState returns the state of the downstream's circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

func (c *Client) call(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	start := time.Now()
	url := c.buildURL(path)
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", method),
		slog.String("path", path),
	)

	if !c.cb.Allow() {
		c.recordMetrics(ctx, method, 0, time.Since(start), "circuit_open")
		logger.Warn("request blocked by circuit breaker")

		return nil, fmt.Errorf("%s: %w", c.serviceName, ErrCircuitOpen)
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	attempts := 1
	if method == http.MethodGet && c.retry.MaxAttempts > 1 {
		attempts = c.retry.MaxAttempts
	}

	var (
		resp *http.Response
		err  error
	)

	for attempt := range attempts {
		if attempt > 0 {
			if waitErr := c.backoff(ctx, attempt, logger); waitErr != nil {
				c.cb.RecordFailure()
				c.recordMetrics(ctx, method, 0, time.Since(start), "context_canceled")
				span.SetStatus(codes.Error, waitErr.Error())

				return nil, waitErr
			}
		}

		resp, err = c.attempt(ctx, method, url, body)

		final := attempt == attempts-1
		if err != nil {
			if final || !isRetryableError(err) {
				break
			}
			logger.Debug("retrying after transport error", slog.Int("attempt", attempt+1), slog.Any("error", err))

			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError && !final {
			logger.Debug("retrying after server error", slog.Int("attempt", attempt+1), slog.Int("status", resp.StatusCode))
			_ = resp.Body.Close()

			continue
		}

		break
	}

	duration := time.Since(start)

	if err != nil {
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		c.recordMetrics(ctx, method, 0, duration, "error")
		logger.Error("downstream request failed", slog.Duration("duration", duration), slog.Any("error", err))

		return nil, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.cb.RecordFailure()
	} else {
		c.cb.RecordSuccess()
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}

	c.recordMetrics(ctx, method, resp.StatusCode, duration, fmt.Sprintf("%dxx", resp.StatusCode/100))
	logger.Log(ctx, logging.LevelTrace, "downstream request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

// attempt sends one request. The body is rebuilt from bytes each time.
func (c *Client) attempt(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := newRequest(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", contentTypeJSON)

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return c.http.Do(req)
}

func newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)

	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, url, http.NoBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	}

	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return req, nil
}

// backoff sleeps before retry number attempt, or returns ctx's error.
func (c *Client) backoff(ctx context.Context, attempt int, logger *slog.Logger) error {
	wait := c.calculateBackoff(attempt)
	logger.Debug("backing off", slog.Int("attempt", attempt+1), slog.Duration("backoff", wait))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// calculateBackoff is InitialInterval * Multiplier^attempt capped at
// MaxInterval, spread by ±JitterFactor.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.retry.InitialInterval) * math.Pow(c.retry.Multiplier, float64(attempt))
	if c.retry.MaxInterval > 0 && backoff > float64(c.retry.MaxInterval) {
		backoff = float64(c.retry.MaxInterval)
	}

	if c.retry.JitterFactor > 0 {
		spread := rand.Float64()*2 - 1 //nolint:gosec // jitter needs no crypto randomness
		backoff += backoff * c.retry.JitterFactor * spread
	}

	return time.Duration(backoff)
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// isRetryableError reports whether a transport error is worth another
// attempt: timeouts and connection failures, but never a cancelled or
// expired request context.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
