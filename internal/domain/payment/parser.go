package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

// levelTrace matches the service-wide trace level without importing the logging platform.
const levelTrace = slog.LevelDebug - 4

// State is the lifecycle position of a single parse.
type State int

const (
	// StateParsing is the initial state while fields are being checked.
	StateParsing State = iota

	// StateFailed is terminal: a failure was produced.
	StateFailed

	// StateComplete is terminal: a request was produced.
	StateComplete
)

// String returns a lowercase name for the state.
func (s State) String() string {
	switch s {
	case StateParsing:
		return "parsing"
	case StateFailed:
		return "failed"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ParserConfig configures a Parser.
type ParserConfig struct {
	// Logger receives trace-level state transitions. Defaults to slog.Default().
	Logger *slog.Logger

	// AllowInsecureReturnURLs accepts http:// return URLs when true.
	AllowInsecureReturnURLs bool
}

// Parser turns a raw create-payment body into a CreatePaymentRequest.
// It is stateless between calls and safe for concurrent use.
type Parser struct {
	logger        *slog.Logger
	allowInsecure bool
}

// NewParser creates a parser.
func NewParser(cfg ParserConfig) *Parser {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Parser{
		logger:        logger.With(slog.String("component", "payment.Parser")),
		allowInsecure: cfg.AllowInsecureReturnURLs,
	}
}

// Parse validates body fail-fast in a fixed field order. On failure the
// returned error is always a *Failure and the request is nil.
func (p *Parser) Parse(ctx context.Context, body []byte) (*CreatePaymentRequest, error) {
	run := parseRun{parser: p, ctx: ctx, state: StateParsing}

	req, failure := run.parse(body)
	if failure != nil {
		run.transition(StateFailed, slog.String("code", failure.Code), slog.String("field", failure.Field))
		return nil, failure
	}

	run.transition(StateComplete)

	return req, nil
}

// parseRun carries the state of one Parse call.
type parseRun struct {
	parser *Parser
	ctx    context.Context //nolint:containedctx // scoped to a single call
	state  State
}

func (r *parseRun) transition(to State, attrs ...slog.Attr) {
	from := r.state
	r.state = to

	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("from", from.String()), slog.String("to", to.String()))
	for _, a := range attrs {
		args = append(args, a)
	}

	r.parser.logger.Log(r.ctx, levelTrace, "parser state changed", args...)
}

func (r *parseRun) parse(body []byte) (*CreatePaymentRequest, *Failure) {
	fields, ok := decodeObject(body)
	if !ok {
		return nil, unparsable()
	}

	req := &CreatePaymentRequest{}

	var failure *Failure

	if req.amount, failure = requireInt(FieldAmount, lookup(fields, FieldAmount), MinAmount, MaxAmount); failure != nil {
		return nil, failure
	}

	if req.reference, failure = requireString(FieldReference, lookup(fields, FieldReference), MaxReferenceLength); failure != nil {
		return nil, failure
	}

	if req.description, failure = requireString(FieldDescription, lookup(fields, FieldDescription), MaxDescriptionLength); failure != nil {
		return nil, failure
	}

	if failure = r.parseReturnTarget(fields, req); failure != nil {
		return nil, failure
	}

	if req.language, req.hasLanguage, failure = optionalLanguage(FieldLanguage, lookup(fields, FieldLanguage)); failure != nil {
		return nil, failure
	}

	if req.delayedCapture, req.hasDelayed, failure = optionalBool(FieldDelayedCapture, lookup(fields, FieldDelayedCapture)); failure != nil {
		return nil, failure
	}

	return req, nil
}

// parseReturnTarget applies the agreement_id / return_url rule: without an
// agreement the return URL is mandatory, with one it is optional and a
// null return URL counts as absent.
func (r *parseRun) parseReturnTarget(fields map[string]json.RawMessage, req *CreatePaymentRequest) *Failure {
	var failure *Failure

	agreement := lookup(fields, FieldAgreementID)
	returnURL := lookup(fields, FieldReturnURL)

	if !agreement.present {
		if !returnURL.present || returnURL.isNull() {
			return missing(FieldReturnURL)
		}

		req.returnURL, req.hasReturnURL, failure = optionalURL(FieldReturnURL, returnURL, MaxReturnURLLength, r.parser.allowInsecure)

		return failure
	}

	req.agreementID, req.hasAgreementID, failure = optionalString(FieldAgreementID, agreement, MaxAgreementIDLength, reasonAgreement)
	if failure != nil {
		return failure
	}

	// An empty agreement cannot stand in for the return URL.
	if req.agreementID == "" {
		return missing(FieldAgreementID)
	}

	if returnURL.isNull() {
		return nil
	}

	req.returnURL, req.hasReturnURL, failure = optionalURL(FieldReturnURL, returnURL, MaxReturnURLLength, r.parser.allowInsecure)

	return failure
}

// decodeObject buffers the members of a single top-level JSON object.
// Duplicate keys keep the last value.
func decodeObject(body []byte) (map[string]json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, false
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}

	return fields, true
}
