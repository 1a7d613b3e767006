package acl

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/pay-public-api/internal/platform/telemetry"
)

// Outcome is the closed set of downstream failure shapes.
type Outcome int

const (
	// OutcomeConnectorError covers transport failures, non-404 error statuses,
	// unexpected success statuses, and undecodable success bodies.
	OutcomeConnectorError Outcome = iota + 1

	// OutcomeNotFound is a downstream 404.
	OutcomeNotFound

	// OutcomeEmptyPayload is a success status whose body is empty, blank or null.
	OutcomeEmptyPayload
)

// String returns a snake_case name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeConnectorError:
		return "connector_error"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeEmptyPayload:
		return "empty_payload"
	default:
		return "unknown"
	}
}

// DownstreamResult is everything the translator needs to know about one
// downstream call. Body is the raw response body.
type DownstreamResult struct {
	// Status is the downstream HTTP status, or 0 when no response arrived.
	Status int

	// Expected is the success status the operation requires. Zero accepts any 2xx.
	Expected int

	Body         []byte
	TransportErr error
	DecodeErr    error
}

// Succeeded reports whether the call reached the service and returned the expected status.
func (r DownstreamResult) Succeeded() bool {
	if r.TransportErr != nil || r.Status == 0 {
		return false
	}

	if r.Expected != 0 {
		return r.Status == r.Expected
	}

	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// HasPayload reports whether Body carries a JSON value other than null.
func (r DownstreamResult) HasPayload() bool {
	trimmed := bytes.TrimSpace(r.Body)

	return len(trimmed) > 0 && string(trimmed) != "null"
}

// Classify maps a downstream result onto an Outcome.
func Classify(r DownstreamResult) Outcome {
	switch {
	case r.TransportErr != nil, r.Status == 0:
		return OutcomeConnectorError
	case r.Status == http.StatusNotFound:
		return OutcomeNotFound
	case !r.Succeeded():
		return OutcomeConnectorError
	case !r.HasPayload():
		return OutcomeEmptyPayload
	default:
		// Undecodable bodies land here.
		return OutcomeConnectorError
	}
}

// Entry is the client-facing rendering of one outcome.
type Entry struct {
	Code    string
	Message string
	Status  int
}

// Vocabulary is the per-operation table from outcome to client error.
type Vocabulary struct {
	Operation string
	Entries   map[Outcome]Entry
}

// Client-facing downstream error codes.
const (
	CodeCreatePaymentAccountError   = "P0199"
	CodeCreatePaymentConnectorError = "P0198"
	CodeConnectorEmptyPayload       = "P0196"
	CodeGetPaymentNotFound          = "P0200"
	CodeGetPaymentConnectorError    = "P0298"
	CodeGetEventsNotFound           = "P0300"
	CodeGetEventsConnectorError     = "P0398"
)

const (
	messageAccountError    = "There is an error with this account. Please contact support"
	messageDownstreamError = "Downstream system error"
	messageNotFound        = "Not found"
	messageEmptyPayload    = "Connector response contains no payload!"
)

var emptyPayloadEntry = Entry{
	Code:    CodeConnectorEmptyPayload,
	Message: messageEmptyPayload,
	Status:  http.StatusBadRequest,
}

// CreatePaymentVocabulary normalizes failures of POST /v1/payments.
var CreatePaymentVocabulary = Vocabulary{
	Operation: "create payment",
	Entries: map[Outcome]Entry{
		OutcomeNotFound:       {Code: CodeCreatePaymentAccountError, Message: messageAccountError, Status: http.StatusNotFound},
		OutcomeConnectorError: {Code: CodeCreatePaymentConnectorError, Message: messageDownstreamError, Status: http.StatusInternalServerError},
		OutcomeEmptyPayload:   emptyPayloadEntry,
	},
}

// GetPaymentVocabulary normalizes failures of GET /v1/payments/{id}.
var GetPaymentVocabulary = Vocabulary{
	Operation: "get payment",
	Entries: map[Outcome]Entry{
		OutcomeNotFound:       {Code: CodeGetPaymentNotFound, Message: messageNotFound, Status: http.StatusNotFound},
		OutcomeConnectorError: {Code: CodeGetPaymentConnectorError, Message: messageDownstreamError, Status: http.StatusInternalServerError},
		OutcomeEmptyPayload:   emptyPayloadEntry,
	},
}

// GetPaymentEventsVocabulary normalizes failures of GET /v1/payments/{id}/events.
var GetPaymentEventsVocabulary = Vocabulary{
	Operation: "get payment events",
	Entries: map[Outcome]Entry{
		OutcomeNotFound:       {Code: CodeGetEventsNotFound, Message: messageNotFound, Status: http.StatusNotFound},
		OutcomeConnectorError: {Code: CodeGetEventsConnectorError, Message: messageDownstreamError, Status: http.StatusInternalServerError},
		OutcomeEmptyPayload:   emptyPayloadEntry,
	},
}

// CreateAgreementVocabulary normalizes failures of POST /v1/agreements.
var CreateAgreementVocabulary = Vocabulary{
	Operation: "create agreement",
	Entries: map[Outcome]Entry{
		OutcomeNotFound:       {Code: CodeCreatePaymentAccountError, Message: messageAccountError, Status: http.StatusNotFound},
		OutcomeConnectorError: {Code: CodeCreatePaymentConnectorError, Message: messageDownstreamError, Status: http.StatusInternalServerError},
		OutcomeEmptyPayload:   emptyPayloadEntry,
	},
}

// NormalizedError is a downstream failure rendered for clients.
// It never carries the downstream status or body.
type NormalizedError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *NormalizedError) Error() string {
	return e.Code + ": " + e.Message
}

// ErrorIdentifier returns the client-facing code.
func (e *NormalizedError) ErrorIdentifier() string { return e.Code }

// ClientMessage returns the client-facing message.
func (e *NormalizedError) ClientMessage() string { return e.Message }

// HTTPStatus returns the status the client receives.
func (e *NormalizedError) HTTPStatus() int { return e.Status }

// Translator turns downstream failures into client errors. It logs the
// real downstream status and body exactly once per translation.
type Translator struct {
	logger *slog.Logger
}

// NewTranslator creates a translator. Defaults logger to slog.Default() if nil.
func NewTranslator(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Translator{logger: logger.With(slog.String("component", "acl.Translator"))}
}

// Translate classifies r and renders it with vocab.
func (t *Translator) Translate(ctx context.Context, vocab Vocabulary, r DownstreamResult) *NormalizedError {
	outcome := Classify(r)

	entry, ok := vocab.Entries[outcome]
	if !ok {
		entry = Entry{Code: CodeCreatePaymentConnectorError, Message: messageDownstreamError, Status: http.StatusInternalServerError}
	}

	attrs := []any{
		slog.String("operation", vocab.Operation),
		slog.String("outcome", outcome.String()),
		slog.Int("downstream_status", r.Status),
		slog.String("downstream_body", string(r.Body)),
		slog.Int("client_status", entry.Status),
		slog.String("error_identifier", entry.Code),
	}

	if errResp := ParseErrorResponse(r.Body); errResp != nil {
		attrs = append(attrs, slog.String("downstream_message", errResp.GetMessage()))
	}

	if r.TransportErr != nil {
		attrs = append(attrs, slog.String("transport_error", describeTransportError(r.TransportErr)))
	}

	if r.DecodeErr != nil {
		attrs = append(attrs, slog.Any("decode_error", r.DecodeErr))
	}

	t.logger.ErrorContext(ctx, "connector invalid response", attrs...)
	telemetry.RecordDownstreamFailure(vocab.Operation, outcome.String())

	return &NormalizedError{
		Code:    entry.Code,
		Message: entry.Message,
		Status:  entry.Status,
	}
}
