// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/pay-public-api/internal/domain"
	"github.com/jsamuelsen/pay-public-api/internal/domain/payment"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
	"github.com/jsamuelsen/pay-public-api/internal/platform/telemetry"
)

// ErrorResponse is the error envelope for all public API errors.
// Only the identifier and message are ever serialized; internal detail is logged.
type ErrorResponse struct {
	// ErrorIdentifier is the stable machine-readable code (e.g. "P0102").
	ErrorIdentifier string `json:"error_identifier"`

	// Message is the human-readable message.
	Message string `json:"message"`

	// Errors lists every violated field. Only aggregated validation sets it.
	Errors []string `json:"errors,omitempty"`
}

// Error identifiers owned by the HTTP boundary.
const (
	// ErrorCodeUnauthorized indicates the gateway account header is missing.
	ErrorCodeUnauthorized = "P0401"

	// ErrorCodeValidation indicates aggregated request validation failed.
	ErrorCodeValidation = "P0422"

	// ErrorCodeTooManyRequests indicates the account exceeded its rate limit.
	ErrorCodeTooManyRequests = "P0900"

	// ErrorCodeTimeout indicates the request timed out.
	ErrorCodeTimeout = "P0998"

	// ErrorCodeInternal indicates an unexpected internal error.
	ErrorCodeInternal = "P0999"
)

// Boundary messages.
const (
	MessageUnauthorized    = "Credentials are required to access this service"
	MessageValidation      = "Request validation failed"
	MessageTooManyRequests = "Too many requests"
	MessageTimeout         = "Request timeout exceeded"
	MessageInternal        = "An internal error occurred"
)

// contextKeyTraceID is the gin context key checked first by GetTraceID.
const contextKeyTraceID = "trace_id"

// headerRequestID is the fallback trace source.
const headerRequestID = "X-Request-ID"

// CodedError is implemented by errors that already know their client
// identifier, message and status (downstream failures normalized by the ACL).
type CodedError interface {
	error
	ErrorIdentifier() string
	ClientMessage() string
	HTTPStatus() int
}

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		ErrorIdentifier: code,
		Message:         message,
	}
}

// NewValidationErrorResponse creates an aggregated validation response.
func NewValidationErrorResponse(fieldErrors []string) *ErrorResponse {
	return &ErrorResponse{
		ErrorIdentifier: ErrorCodeValidation,
		Message:         MessageValidation,
		Errors:          fieldErrors,
	}
}

// HTTPStatusFromCode maps boundary error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeValidation:
		return http.StatusUnprocessableEntity
	case ErrorCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorCodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// StatusForFailure chooses the status for a parse failure by its kind.
func StatusForFailure(f *payment.Failure) int {
	if f.Kind == payment.KindSemantic {
		return http.StatusUnprocessableEntity
	}

	return http.StatusBadRequest
}

// GetTraceID returns the trace ID for the request. It prefers an explicit
// "trace_id" context value, then the active span, then the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if v, exists := c.Get(contextKeyTraceID); exists {
		if s, ok := v.(string); ok {
			return s
		}

		return ""
	}

	if c.Request == nil {
		return ""
	}

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return c.GetHeader(headerRequestID)
}

// MapError maps an error to a status and envelope.
// Unknown errors become P0999 so internals never reach the client.
func MapError(err error) (int, *ErrorResponse) {
	var failure *payment.Failure
	if errors.As(err, &failure) {
		return StatusForFailure(failure), NewErrorResponse(failure.Code, failure.Message)
	}

	var coded CodedError
	if errors.As(err, &coded) {
		return coded.HTTPStatus(), NewErrorResponse(coded.ErrorIdentifier(), coded.ClientMessage())
	}

	if errors.Is(err, ErrBinding) {
		unparsable := payment.UnparsableFailure()
		return StatusForFailure(unparsable), NewErrorResponse(unparsable.Code, unparsable.Message)
	}

	var fieldErrs *FieldErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusUnprocessableEntity, NewValidationErrorResponse(fieldErrs.Messages)
	}

	var domainErr *domain.ValidationError
	if errors.As(err, &domainErr) {
		return http.StatusUnprocessableEntity, NewValidationErrorResponse([]string{domainErr.Detail()})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeTimeout, MessageTimeout)
	}

	return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, MessageInternal)
}

// HandleError writes the error envelope for err and logs it with the trace ID.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)

	logger := logging.FromContext(c.Request.Context())
	attrs := []any{
		slog.Int("status", status),
		slog.String("error_identifier", resp.ErrorIdentifier),
		slog.String("trace_id", GetTraceID(c)),
		slog.Any("error", err),
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "request failed", attrs...)
	} else {
		logger.InfoContext(c.Request.Context(), "request rejected", attrs...)
	}

	telemetry.MarkError(c, resp.ErrorIdentifier, status)
	c.JSON(status, resp)
}

// AbortWithCode aborts the chain with a boundary-owned code.
func AbortWithCode(c *gin.Context, code, message string) {
	status := HTTPStatusFromCode(code)
	telemetry.MarkError(c, code, status)
	c.AbortWithStatusJSON(status, NewErrorResponse(code, message))
}
