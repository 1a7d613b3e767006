// Package payment holds the create-payment request model and the fail-fast
// parser that builds it from a raw JSON body.
//
// The parser never returns partially validated data: callers either get a
// fully populated [CreatePaymentRequest] or exactly one [*Failure].
package payment

import (
	"fmt"

	"github.com/jsamuelsen/pay-public-api/internal/domain"
)

// Kind classifies a validation failure.
type Kind int

const (
	// KindStructural means the input was malformed, missing, or of the wrong JSON kind.
	KindStructural Kind = iota + 1

	// KindSemantic means the input was well-formed but broke a range, length, or format rule.
	KindSemantic
)

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Client-facing codes for request validation failures.
const (
	// CodeMissingAttribute is returned when a mandatory attribute is absent or null.
	CodeMissingAttribute = "P0101"

	// CodeInvalidAttribute is returned for wrong kind, length, range, or enum values.
	// It is shared by structural and semantic failures; Kind tells them apart.
	CodeInvalidAttribute = "P0102"

	// CodeUnparsableJSON is returned when the body is not a single JSON object.
	CodeUnparsableJSON = "P0197"
)

// Failure is a single validation failure produced by the parser.
type Failure struct {
	Kind    Kind
	Code    string
	Field   string
	Message string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (f *Failure) Unwrap() error {
	return domain.ErrValidation
}

// unparsable builds the P0197 failure.
func unparsable() *Failure {
	return &Failure{
		Kind:    KindStructural,
		Code:    CodeUnparsableJSON,
		Message: "Unable to parse JSON",
	}
}

// missing builds the P0101 failure for field.
func missing(field string) *Failure {
	return &Failure{
		Kind:    KindStructural,
		Code:    CodeMissingAttribute,
		Field:   field,
		Message: "Missing mandatory attribute: " + field,
	}
}

// invalid builds a P0102 failure for field with the given kind and reason.
func invalid(kind Kind, field, reason string) *Failure {
	return &Failure{
		Kind:    kind,
		Code:    CodeInvalidAttribute,
		Field:   field,
		Message: fmt.Sprintf("Invalid attribute value: %s. %s", field, reason),
	}
}

// UnparsableFailure returns the P0197 failure for bodies that are not a single JSON object.
func UnparsableFailure() *Failure {
	return unparsable()
}
