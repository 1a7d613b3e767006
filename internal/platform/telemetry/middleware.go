package telemetry

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jsamuelsen/pay-public-api/telemetry"

	// ContextKeyErrorIdentifier is the gin context key error writers set so
	// the error identifier lands on the span and request metrics.
	ContextKeyErrorIdentifier = "telemetry.error_identifier"

	// HeaderTraceID carries the trace ID back to the caller.
	HeaderTraceID = "X-Trace-ID"

	errorIdentifierAttr = attribute.Key("payments.error_identifier")
)

type serverInstruments struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newServerInstruments(meter metric.Meter) (*serverInstruments, error) {
	duration, durErr := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"))
	requests, reqErr := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"))
	inFlight, flightErr := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"))

	if err := errors.Join(durErr, reqErr, flightErr); err != nil {
		return nil, err
	}

	return &serverInstruments{duration: duration, requests: requests, inFlight: inFlight}, nil
}

// TracingMiddleware starts the server span for each request.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// Middleware records request metrics and returns the trace ID in X-Trace-ID.
// It must run after TracingMiddleware so the server span is already in the
// request context. An error identifier recorded by MarkError is added to the
// span and the metric attributes.
func Middleware(serviceName string) gin.HandlerFunc {
	instruments, err := newServerInstruments(otel.Meter(instrumentationName))
	if err != nil {
		// Tracing and the trace header still work without instruments
		otel.Handle(err)
	}

	service := attribute.String("service.name", serviceName)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		span := trace.SpanFromContext(ctx)

		// Headers are frozen once the handler writes the body
		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)

		if instruments != nil {
			inFlightAttrs := metric.WithAttributes(service, method, route)
			instruments.inFlight.Add(ctx, 1, inFlightAttrs)
			defer instruments.inFlight.Add(ctx, -1, inFlightAttrs)
		}

		c.Next()

		attrs := []attribute.KeyValue{service, method, route, attribute.Int("http.status_code", c.Writer.Status())}
		if code := c.GetString(ContextKeyErrorIdentifier); code != "" {
			attrs = append(attrs, errorIdentifierAttr.String(code))
			span.SetAttributes(errorIdentifierAttr.String(code))
		}

		if instruments != nil {
			instruments.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
			instruments.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	}
}

// MarkError tags the response with its error identifier for the span and
// request metrics and counts it in Prometheus.
func MarkError(c *gin.Context, errorIdentifier string, status int) {
	c.Set(ContextKeyErrorIdentifier, errorIdentifier)
	RecordErrorResponse(errorIdentifier, status)
}
