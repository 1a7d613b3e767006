// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Errors from downstream calls are already normalized for clients
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/pay-public-api/internal/domain/agreement"
	"github.com/jsamuelsen/pay-public-api/internal/domain/payment"
)

// PaymentConnector forwards card payment operations to the connector.
//
// Every error returned is safe to show to clients: implementations translate
// downstream statuses and bodies before returning.
type PaymentConnector interface {
	// CreatePayment creates a charge for the gateway account.
	CreatePayment(ctx context.Context, accountID string, req *payment.CreatePaymentRequest) (*payment.Payment, error)

	// GetPayment fetches a charge by its identifier.
	GetPayment(ctx context.Context, accountID, paymentID string) (*payment.Payment, error)

	// GetPaymentEvents fetches the status history of a charge.
	GetPaymentEvents(ctx context.Context, accountID, paymentID string) (*payment.Events, error)
}

// AgreementConnector forwards direct debit agreement operations to the
// direct debit connector.
type AgreementConnector interface {
	// CreateAgreement creates a mandate for the gateway account.
	CreateAgreement(ctx context.Context, accountID string, req agreement.CreateRequest) (*agreement.Agreement, error)
}
