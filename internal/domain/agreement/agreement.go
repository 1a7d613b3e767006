// Package agreement models direct debit agreements (mandates) between a
// paying user and a service.
package agreement

// Type is the kind of direct debit agreement.
type Type string

const (
	// TypeOnDemand lets the service take payments whenever it needs to.
	TypeOnDemand Type = "ON_DEMAND"

	// TypeOneOff covers a single payment.
	TypeOneOff Type = "ONE_OFF"
)

// Types lists every valid agreement type.
func Types() []Type {
	return []Type{TypeOnDemand, TypeOneOff}
}

// CreateRequest asks the direct debit connector to set up an agreement.
type CreateRequest struct {
	ReturnURL string
	Type      Type
}

// Agreement is a direct debit agreement as known to the connector.
type Agreement struct {
	ID          string
	Type        Type
	ReturnURL   string
	CreatedDate string
	State       string
}
