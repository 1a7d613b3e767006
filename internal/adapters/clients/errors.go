// Package clients provides the resilient HTTP client the connector adapters
// are built on.
package clients

import "errors"

// Transport-level failures. The acl package classifies both as connector
// errors; neither ever reaches a client verbatim.
var (
	// ErrCircuitOpen is returned without contacting the connector while its
	// circuit is open. It is wrapped with the downstream name.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last transport error once every
	// attempt of an idempotent request has failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// IsUnavailable reports whether err means the connector could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrMaxRetriesExceeded)
}
