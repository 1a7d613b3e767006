package acl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/clients"
	"github.com/jsamuelsen/pay-public-api/internal/domain/payment"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

const (
	chargesPathFormat      = "/v1/api/accounts/%s/charges"
	chargePathFormat       = chargesPathFormat + "/%s"
	chargeEventsPathFormat = chargePathFormat + "/events"
)

var errMissingChargeID = errors.New("response has no charge_id")

// ConnectorClientConfig contains configuration for the card connector client.
type ConnectorClientConfig struct {
	// Client is the HTTP client to use for requests.
	// The client's BaseURL should be set to the connector endpoint.
	Client *clients.Client

	// Translator normalizes downstream failures. Defaults to one using Logger.
	Translator *Translator

	// ServiceName identifies the connector in logs and health checks.
	ServiceName string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// ConnectorClient implements ports.PaymentConnector against the card connector.
type ConnectorClient struct {
	BaseAdapter
	logger *slog.Logger
}

// NewConnectorClient creates a new card connector adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewConnectorClient(cfg ConnectorClientConfig) *ConnectorClient {
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
		name = "connector"
	}

	return &ConnectorClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, name, translator),
		logger:      logger,
	}
}

// createChargeRequest is the connector's create charge payload.
type createChargeRequest struct {
	Amount         int64  `json:"amount"`
	Reference      string `json:"reference"`
	Description    string `json:"description"`
	ReturnURL      string `json:"return_url,omitempty"`
	AgreementID    string `json:"agreement_id,omitempty"`
	Language       string `json:"language,omitempty"`
	DelayedCapture *bool  `json:"delayed_capture,omitempty"`
}

// linkDTO is a link as the connector sends it.
type linkDTO struct {
	Href   string            `json:"href"`
	Rel    string            `json:"rel"`
	Method string            `json:"method"`
	Type   string            `json:"type,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// chargeResponse is the connector's charge representation.
// This is an internal type - never exposed outside the ACL.
type chargeResponse struct {
	ChargeID        string    `json:"charge_id"`
	Amount          int64     `json:"amount"`
	Reference       string    `json:"reference"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	ReturnURL       string    `json:"return_url"`
	PaymentProvider string    `json:"payment_provider"`
	CreatedDate     string    `json:"created_date"`
	Language        string    `json:"language"`
	DelayedCapture  bool      `json:"delayed_capture"`
	AgreementID     string    `json:"agreement_id"`
	Links           []linkDTO `json:"links"`
}

func (r *chargeResponse) checkShape() error {
	if r.ChargeID == "" {
		return errMissingChargeID
	}

	return nil
}

// chargeEventsResponse is the connector's charge event history.
type chargeEventsResponse struct {
	ChargeID string `json:"charge_id"`
	Events   []struct {
		Status  string `json:"status"`
		Updated string `json:"updated"`
	} `json:"events"`
}

func (r *chargeEventsResponse) checkShape() error {
	if r.ChargeID == "" {
		return errMissingChargeID
	}

	return nil
}

// CreatePayment creates a charge. The connector must answer 201.
// Implements ports.PaymentConnector.
func (c *ConnectorClient) CreatePayment(ctx context.Context, accountID string, req *payment.CreatePaymentRequest) (*payment.Payment, error) {
	path := fmt.Sprintf(chargesPathFormat, url.PathEscape(accountID))
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))
	c.logger.DebugContext(ctx, "creating charge", slog.Any("request", req))

	result := c.Post(ctx, path, toCreateChargeRequest(req), http.StatusCreated)

	ext, err := DecodeResponse[chargeResponse](ctx, &c.BaseAdapter, CreatePaymentVocabulary, result)
	if err != nil {
		return nil, err
	}

	return translateCharge(ext), nil
}

// GetPayment fetches a charge. The connector must answer 200.
// Implements ports.PaymentConnector.
func (c *ConnectorClient) GetPayment(ctx context.Context, accountID, paymentID string) (*payment.Payment, error) {
	path := fmt.Sprintf(chargePathFormat, url.PathEscape(accountID), url.PathEscape(paymentID))
	c.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("path", path),
		slog.String("payment_id", paymentID))

	result := c.Get(ctx, path, http.StatusOK)

	ext, err := DecodeResponse[chargeResponse](ctx, &c.BaseAdapter, GetPaymentVocabulary, result)
	if err != nil {
		return nil, err
	}

	return translateCharge(ext), nil
}

// GetPaymentEvents fetches a charge's status history. The connector must answer 200.
// Implements ports.PaymentConnector.
func (c *ConnectorClient) GetPaymentEvents(ctx context.Context, accountID, paymentID string) (*payment.Events, error) {
	path := fmt.Sprintf(chargeEventsPathFormat, url.PathEscape(accountID), url.PathEscape(paymentID))
	c.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("path", path),
		slog.String("payment_id", paymentID))

	result := c.Get(ctx, path, http.StatusOK)

	ext, err := DecodeResponse[chargeEventsResponse](ctx, &c.BaseAdapter, GetPaymentEventsVocabulary, result)
	if err != nil {
		return nil, err
	}

	events := &payment.Events{
		PaymentID: ext.ChargeID,
		Events:    make([]payment.Event, 0, len(ext.Events)),
	}
	for _, e := range ext.Events {
		events.Events = append(events.Events, payment.Event{Status: e.Status, Updated: e.Updated})
	}

	return events, nil
}

// toCreateChargeRequest builds the connector payload from a validated request.
func toCreateChargeRequest(req *payment.CreatePaymentRequest) createChargeRequest {
	out := createChargeRequest{
		Amount:      req.Amount(),
		Reference:   req.Reference(),
		Description: req.Description(),
	}

	if returnURL, ok := req.ReturnURL(); ok {
		out.ReturnURL = returnURL
	}

	if agreementID, ok := req.AgreementID(); ok {
		out.AgreementID = agreementID
	}

	if lang, ok := req.Language(); ok {
		out.Language = lang.String()
	}

	if delayed, ok := req.DelayedCapture(); ok {
		out.DelayedCapture = &delayed
	}

	return out
}

// translateCharge converts the connector DTO to a domain Payment.
func translateCharge(ext *chargeResponse) *payment.Payment {
	p := &payment.Payment{
		ID:              ext.ChargeID,
		Amount:          ext.Amount,
		Reference:       ext.Reference,
		Description:     ext.Description,
		Status:          ext.Status,
		ReturnURL:       ext.ReturnURL,
		PaymentProvider: ext.PaymentProvider,
		CreatedDate:     ext.CreatedDate,
		Language:        ext.Language,
		DelayedCapture:  ext.DelayedCapture,
		AgreementID:     ext.AgreementID,
		Links:           make(map[string]payment.Link, len(ext.Links)),
	}

	for _, l := range ext.Links {
		p.Links[l.Rel] = payment.Link{
			Href:   l.Href,
			Method: l.Method,
			Type:   l.Type,
			Params: l.Params,
		}
	}

	return p
}
