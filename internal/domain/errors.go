// Package domain holds the error vocabulary shared by the payment and
// agreement domains. Nothing here knows about HTTP: the dto package decides
// which error identifier and status a domain error becomes.
package domain

import (
	"errors"
	"strings"
)

// ErrValidation is the sentinel every request validation failure unwraps to,
// whether it comes from the create payment parser or an agreement rule.
var ErrValidation = errors.New("validation failed")

// ValidationError is a rule broken by a single request field.
type ValidationError struct {
	Field   string
	Message string
}

// Invalid reports that field breaks the rule described by message. The
// message reads as a predicate of the field: "may not be empty".
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Detail()
}

// Detail renders the violation the way the aggregated error list shows it.
func (e *ValidationError) Detail() string {
	return strings.TrimSpace(e.Field + " " + e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
