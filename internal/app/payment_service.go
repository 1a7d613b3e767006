// Package app contains application services that orchestrate use cases.
//
// Services sit between the HTTP adapters and the connector ports. They own
// the order of operations (validate, forward, verify) and never see
// transport details on either side.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/pay-public-api/internal/domain/payment"
	"github.com/jsamuelsen/pay-public-api/internal/ports"
)

// ErrPaymentMismatch is returned when the connector records a payment that
// differs from the validated request.
var ErrPaymentMismatch = errors.New("connector payment does not match request")

// PaymentServiceConfig contains configuration for the payment service.
type PaymentServiceConfig struct {
	Connector ports.PaymentConnector
	Parser    *payment.Parser
	Logger    *slog.Logger
}

// PaymentService orchestrates card payment use cases.
type PaymentService struct {
	connector ports.PaymentConnector
	parser    *payment.Parser
	fwd       *forwarder
	logger    *slog.Logger
}

// NewPaymentService creates a new payment service.
// Panics if Connector is nil. A nil Parser gets a default one.
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	if cfg.Connector == nil {
		panic("app: payment connector is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	parser := cfg.Parser
	if parser == nil {
		parser = payment.NewParser(payment.ParserConfig{Logger: logger})
	}

	logger = logger.With(slog.String("component", "app.PaymentService"))

	return &PaymentService{
		connector: cfg.Connector,
		parser:    parser,
		fwd:       newForwarder(logger),
		logger:    logger,
	}
}

// CreatePayment parses body, forwards the validated request for accountID
// and checks what the connector recorded. Parser failures come back as
// *payment.Failure; nothing is forwarded when parsing fails.
func (s *PaymentService) CreatePayment(ctx context.Context, accountID string, body []byte) (*payment.Payment, error) {
	return forward(ctx, s.fwd, forwarding[[]byte, *payment.CreatePaymentRequest, *payment.Payment, *payment.Payment]{
		name:     "create_payment",
		validate: s.parser.Parse,
		perform: func(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.Payment, error) {
			return s.connector.CreatePayment(ctx, accountID, req)
		},
		verify: verifyCreated,
	}, body)
}

// verifyCreated rejects a connector answer that does not describe the requested payment.
func verifyCreated(_ context.Context, req *payment.CreatePaymentRequest, p *payment.Payment) (*payment.Payment, error) {
	if p == nil || p.ID == "" {
		return nil, fmt.Errorf("%w: no payment id", ErrPaymentMismatch)
	}

	if p.Amount != req.Amount() {
		return nil, fmt.Errorf("%w: requested amount %d, recorded %d", ErrPaymentMismatch, req.Amount(), p.Amount)
	}

	return p, nil
}

// GetPayment fetches a payment belonging to accountID.
func (s *PaymentService) GetPayment(ctx context.Context, accountID, paymentID string) (*payment.Payment, error) {
	s.logger.DebugContext(ctx, "fetching payment", slog.String("payment_id", paymentID))

	p, err := s.connector.GetPayment(ctx, accountID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("getting payment %s: %w", paymentID, err)
	}

	return p, nil
}

// GetPaymentEvents fetches the status history of a payment belonging to accountID.
func (s *PaymentService) GetPaymentEvents(ctx context.Context, accountID, paymentID string) (*payment.Events, error) {
	s.logger.DebugContext(ctx, "fetching payment events", slog.String("payment_id", paymentID))

	events, err := s.connector.GetPaymentEvents(ctx, accountID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("getting events for payment %s: %w", paymentID, err)
	}

	return events, nil
}
