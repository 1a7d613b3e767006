package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jsamuelsen/pay-public-api/internal/domain"
	"github.com/jsamuelsen/pay-public-api/internal/domain/agreement"
	"github.com/jsamuelsen/pay-public-api/internal/ports"
)

// AgreementServiceConfig contains configuration for the agreement service.
type AgreementServiceConfig struct {
	Connector ports.AgreementConnector
	Logger    *slog.Logger
}

// AgreementService orchestrates direct debit agreement use cases.
type AgreementService struct {
	connector ports.AgreementConnector
	fwd       *forwarder
}

// NewAgreementService creates a new agreement service. Panics if Connector is nil.
func NewAgreementService(cfg AgreementServiceConfig) *AgreementService {
	if cfg.Connector == nil {
		panic("app: agreement connector is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AgreementService{
		connector: cfg.Connector,
		fwd:       newForwarder(logger.With(slog.String("component", "app.AgreementService"))),
	}
}

// CreateAgreement forwards req for accountID.
func (s *AgreementService) CreateAgreement(ctx context.Context, accountID string, req agreement.CreateRequest) (*agreement.Agreement, error) {
	return forward(ctx, s.fwd, forwarding[agreement.CreateRequest, agreement.CreateRequest, *agreement.Agreement, *agreement.Agreement]{
		name:     "create_agreement",
		validate: validateAgreement,
		perform: func(ctx context.Context, req agreement.CreateRequest) (*agreement.Agreement, error) {
			return s.connector.CreateAgreement(ctx, accountID, req)
		},
		verify: func(_ context.Context, req agreement.CreateRequest, a *agreement.Agreement) (*agreement.Agreement, error) {
			if a == nil || a.ID == "" {
				return nil, fmt.Errorf("connector returned no agreement id for %s", req.Type)
			}

			return a, nil
		},
	}, req)
}

func validateAgreement(_ context.Context, req agreement.CreateRequest) (agreement.CreateRequest, error) {
	if req.ReturnURL == "" {
		return req, domain.Invalid("return_url", "may not be empty")
	}

	if !slices.Contains(agreement.Types(), req.Type) {
		return req, domain.Invalid("agreement_type", "must be one of "+agreementTypeList())
	}

	return req, nil
}

func agreementTypeList() string {
	types := agreement.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	return strings.Join(names, ", ")
}
