package acl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/clients"
	"github.com/jsamuelsen/pay-public-api/internal/domain/agreement"
)

const mandatesPathFormat = "/v1/api/accounts/%s/mandates"

// DirectDebitClientConfig contains configuration for the direct debit connector client.
type DirectDebitClientConfig struct {
	Client      *clients.Client
	Translator  *Translator
	ServiceName string
	Logger      *slog.Logger
}

// DirectDebitClient implements ports.AgreementConnector against the direct debit connector.
type DirectDebitClient struct {
	BaseAdapter
	logger *slog.Logger
}

// NewDirectDebitClient creates a new direct debit connector adapter.
// Panics if Client is nil.
func NewDirectDebitClient(cfg DirectDebitClientConfig) *DirectDebitClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	translator := cfg.Translator
	if translator == nil {
		translator = NewTranslator(logger)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "direct-debit-connector"
	}

	return &DirectDebitClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, name, translator),
		logger:      logger,
	}
}

type createMandateRequest struct {
	ReturnURL     string `json:"return_url"`
	AgreementType string `json:"agreement_type"`
}

type mandateResponse struct {
	MandateID   string `json:"mandate_id"`
	MandateType string `json:"mandate_type"`
	ReturnURL   string `json:"return_url"`
	CreatedDate string `json:"created_date"`
	State       struct {
		Status string `json:"status"`
	} `json:"state"`
}

func (r *mandateResponse) checkShape() error {
	if r.MandateID == "" {
		return errors.New("response has no mandate_id")
	}

	return nil
}

// CreateAgreement creates a mandate. The connector must answer 201.
// Implements ports.AgreementConnector.
func (c *DirectDebitClient) CreateAgreement(ctx context.Context, accountID string, req agreement.CreateRequest) (*agreement.Agreement, error) {
	path := fmt.Sprintf(mandatesPathFormat, url.PathEscape(accountID))
	c.logger.InfoContext(ctx, "agreement create request",
		slog.String("agreement_type", string(req.Type)),
		slog.String("return_url", req.ReturnURL))

	result := c.Post(ctx, path, createMandateRequest{
		ReturnURL:     req.ReturnURL,
		AgreementType: string(req.Type),
	}, http.StatusCreated)

	ext, err := DecodeResponse[mandateResponse](ctx, &c.BaseAdapter, CreateAgreementVocabulary, result)
	if err != nil {
		return nil, err
	}

	a := &agreement.Agreement{
		ID:          ext.MandateID,
		Type:        agreement.Type(ext.MandateType),
		ReturnURL:   ext.ReturnURL,
		CreatedDate: ext.CreatedDate,
		State:       ext.State.Status,
	}

	c.logger.InfoContext(ctx, "agreement created", slog.String("agreement_id", a.ID))

	return a, nil
}
