package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/clients"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

// healthCheckPath is served by both connectors.
const healthCheckPath = "/healthcheck"

// BaseAdapter provides common functionality for connector adapters.
// Embed this in your service-specific adapters.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
	translator  *Translator
}

// NewBaseAdapter creates a new base adapter with the given client and service name.
// Panics if client or translator is nil.
func NewBaseAdapter(client *clients.Client, serviceName string, translator *Translator) BaseAdapter {
	if client == nil {
		panic("acl: client is required")
	}

	if translator == nil {
		panic("acl: translator is required")
	}

	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
		translator:  translator,
	}
}

// ServiceName returns the name of the downstream service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET request and buffers the outcome.
func (a *BaseAdapter) Get(ctx context.Context, path string, expected int) DownstreamResult {
	resp, err := a.client.Get(ctx, path)
	return a.collect(ctx, path, resp, err, expected)
}

// Post marshals payload as JSON, performs a POST request, and buffers the outcome.
func (a *BaseAdapter) Post(ctx context.Context, path string, payload any, expected int) DownstreamResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return DownstreamResult{Expected: expected, TransportErr: fmt.Errorf("encoding request: %w", err)}
	}

	resp, err := a.client.Post(ctx, path, body)

	return a.collect(ctx, path, resp, err, expected)
}

// collect turns a client response into a DownstreamResult, closing the body.
func (a *BaseAdapter) collect(ctx context.Context, path string, resp *http.Response, err error, expected int) DownstreamResult {
	if err != nil {
		return DownstreamResult{Expected: expected, TransportErr: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp.Body)
	if err != nil {
		return DownstreamResult{Status: resp.StatusCode, Expected: expected, TransportErr: err}
	}

	logging.FromContext(ctx).Log(ctx, logging.LevelTrace, "downstream response received",
		slog.String("downstream", a.serviceName),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)))

	return DownstreamResult{Status: resp.StatusCode, Expected: expected, Body: body}
}

// Check performs a health check against the connector's healthcheck endpoint.
// Implements ports.HealthChecker.
func (a *BaseAdapter) Check(ctx context.Context) error {
	r := a.Get(ctx, healthCheckPath, http.StatusOK)
	if clients.IsUnavailable(r.TransportErr) {
		return fmt.Errorf("%s unreachable: %w", a.serviceName, r.TransportErr)
	}

	if r.TransportErr != nil {
		return r.TransportErr
	}

	if !r.Succeeded() {
		return fmt.Errorf("%s returned status %d", a.serviceName, r.Status)
	}

	return nil
}

// Name returns the health check name for this adapter.
// Implements ports.HealthChecker.
func (a *BaseAdapter) Name() string {
	return a.serviceName
}

// shapeChecker is implemented by external DTOs that can tell whether a
// decoded body actually has the fields the operation needs.
type shapeChecker interface {
	checkShape() error
}

// DecodeResponse decodes a successful result into T. Any failure, including
// a body that decodes but lacks required fields, is translated with vocab.
func DecodeResponse[T any](ctx context.Context, a *BaseAdapter, vocab Vocabulary, r DownstreamResult) (*T, error) {
	if !r.Succeeded() || !r.HasPayload() {
		return nil, a.translator.Translate(ctx, vocab, r)
	}

	var result T
	if err := json.Unmarshal(r.Body, &result); err != nil {
		r.DecodeErr = fmt.Errorf("decoding response: %w", err)
		return nil, a.translator.Translate(ctx, vocab, r)
	}

	if checker, ok := any(&result).(shapeChecker); ok {
		if err := checker.checkShape(); err != nil {
			r.DecodeErr = err
			return nil, a.translator.Translate(ctx, vocab, r)
		}
	}

	return &result, nil
}
