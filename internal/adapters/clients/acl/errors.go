package acl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/clients"
)

// maxResponseBodySize caps how much of a downstream body is buffered (1MB).
const maxResponseBodySize = 1 << 20

// ErrorResponse is the error body returned by the connectors.
// Both connectors send {"message": ...}; some versions add an error identifier.
type ErrorResponse struct {
	Message         json.RawMessage `json:"message"`
	ErrorIdentifier string          `json:"error_identifier,omitempty"`
}

// GetMessage returns the message as text. Connectors send either a string
// or a list of strings.
func (e *ErrorResponse) GetMessage() string {
	var single string
	if err := json.Unmarshal(e.Message, &single); err == nil {
		return single
	}

	var many []string
	if err := json.Unmarshal(e.Message, &many); err == nil {
		return fmt.Sprint(many)
	}

	return string(e.Message)
}

// ParseErrorResponse attempts to parse a connector error body.
// Returns nil if the body is empty or has no message.
func ParseErrorResponse(body []byte) *ErrorResponse {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return nil
	}

	if len(errResp.Message) == 0 {
		return nil
	}

	return &errResp
}

// readBody buffers at most maxResponseBodySize bytes of a response body.
func readBody(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(r, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}

// describeTransportError names client-level failures for the log.
func describeTransportError(err error) string {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return "circuit breaker open: " + err.Error()
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return "retries exhausted: " + err.Error()
	default:
		return err.Error()
	}
}
