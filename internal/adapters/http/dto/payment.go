package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsamuelsen/pay-public-api/internal/domain/agreement"
	"github.com/jsamuelsen/pay-public-api/internal/domain/payment"
)

// CreatePaymentBody is the create payment body as the aggregated validation
// strategy binds it. The fail-fast parser does not use this type.
type CreatePaymentBody struct {
	Amount         *int64 `json:"amount"          validate:"required,min=1,max=10000000"`
	Reference      string `json:"reference"       validate:"required,max=255"`
	Description    string `json:"description"     validate:"required,max=255"`
	ReturnURL      string `json:"return_url"      validate:"required_without=AgreementID,omitempty,url,max=2000"`
	AgreementID    string `json:"agreement_id"    validate:"omitempty,max=26"`
	Language       string `json:"language"        validate:"omitempty,oneof=en cy"`
	DelayedCapture *bool  `json:"delayed_capture"`
}

// ValidateCreatePaymentBody decodes body and reports every violated field at
// once. Only a body that is not a JSON object is a P0197 failure. A member of
// the wrong JSON kind passes here and is reported by the fail-fast parser.
func ValidateCreatePaymentBody(body []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return payment.UnparsableFailure()
	}

	var b CreatePaymentBody
	if err := json.Unmarshal(body, &b); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil
		}

		return payment.UnparsableFailure()
	}

	return Validate(&b)
}

// CreateAgreementBody is the create agreement request body.
type CreateAgreementBody struct {
	ReturnURL     string `json:"return_url"     validate:"required,url,max=2000"`
	AgreementType string `json:"agreement_type" validate:"required,oneof=ON_DEMAND ONE_OFF"`
}

// ToDomain converts the body to a domain request.
func (b *CreateAgreementBody) ToDomain() agreement.CreateRequest {
	return agreement.CreateRequest{
		ReturnURL: b.ReturnURL,
		Type:      agreement.Type(b.AgreementType),
	}
}

// LinkResponse is a single hypermedia link.
type LinkResponse struct {
	Href   string            `json:"href"`
	Method string            `json:"method"`
	Type   string            `json:"type,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// PaymentLinks are the links returned with a payment.
type PaymentLinks struct {
	Self        LinkResponse  `json:"self"`
	NextURL     *LinkResponse `json:"next_url"`
	NextURLPost *LinkResponse `json:"next_url_post"`
	Events      LinkResponse  `json:"events"`
}

// StateResponse is a payment or event state.
type StateResponse struct {
	Status string `json:"status"`
}

// PaymentResponse is the public representation of a payment.
type PaymentResponse struct {
	PaymentID       string        `json:"payment_id"`
	Amount          int64         `json:"amount"`
	Reference       string        `json:"reference"`
	Description     string        `json:"description"`
	State           StateResponse `json:"state"`
	ReturnURL       string        `json:"return_url,omitempty"`
	PaymentProvider string        `json:"payment_provider"`
	CreatedDate     string        `json:"created_date"`
	Language        string        `json:"language,omitempty"`
	DelayedCapture  bool          `json:"delayed_capture"`
	AgreementID     string        `json:"agreement_id,omitempty"`
	Links           PaymentLinks  `json:"_links"`
}

// EventResponse is one entry of a payment's status history.
type EventResponse struct {
	State   StateResponse `json:"state"`
	Updated string        `json:"updated"`
}

// EventsResponse is a payment's status history.
type EventsResponse struct {
	PaymentID string          `json:"payment_id"`
	Events    []EventResponse `json:"events"`
	Links     struct {
		Self LinkResponse `json:"self"`
	} `json:"_links"`
}

// AgreementResponse is the public representation of an agreement.
type AgreementResponse struct {
	AgreementID   string        `json:"agreement_id"`
	AgreementType string        `json:"agreement_type"`
	ReturnURL     string        `json:"return_url"`
	CreatedDate   string        `json:"created_date"`
	State         StateResponse `json:"state"`
}

// PaymentLocation returns the public URL of a payment.
func PaymentLocation(baseURL, paymentID string) string {
	return strings.TrimSuffix(baseURL, "/") + "/v1/payments/" + url.PathEscape(paymentID)
}

// AgreementLocation returns the public URL of an agreement.
func AgreementLocation(baseURL, agreementID string) string {
	return strings.TrimSuffix(baseURL, "/") + "/v1/agreements/" + url.PathEscape(agreementID)
}

// NewPaymentResponse renders a payment. Self and events links point at this
// API; next_url links are passed through from the connector.
func NewPaymentResponse(p *payment.Payment, baseURL string) *PaymentResponse {
	self := PaymentLocation(baseURL, p.ID)

	resp := &PaymentResponse{
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Reference:       p.Reference,
		Description:     p.Description,
		State:           StateResponse{Status: p.Status},
		ReturnURL:       p.ReturnURL,
		PaymentProvider: p.PaymentProvider,
		CreatedDate:     p.CreatedDate,
		Language:        p.Language,
		DelayedCapture:  p.DelayedCapture,
		AgreementID:     p.AgreementID,
		Links: PaymentLinks{
			Self:   LinkResponse{Href: self, Method: http.MethodGet},
			Events: LinkResponse{Href: self + "/events", Method: http.MethodGet},
		},
	}

	if l, ok := p.Link(payment.RelNextURL); ok {
		resp.Links.NextURL = toLinkResponse(l)
	}

	if l, ok := p.Link(payment.RelNextURLPost); ok {
		resp.Links.NextURLPost = toLinkResponse(l)
	}

	return resp
}

// NewEventsResponse renders a payment's event history.
func NewEventsResponse(e *payment.Events, baseURL string) *EventsResponse {
	resp := &EventsResponse{
		PaymentID: e.PaymentID,
		Events:    make([]EventResponse, 0, len(e.Events)),
	}

	for _, ev := range e.Events {
		resp.Events = append(resp.Events, EventResponse{
			State:   StateResponse{Status: ev.Status},
			Updated: ev.Updated,
		})
	}

	resp.Links.Self = LinkResponse{
		Href:   PaymentLocation(baseURL, e.PaymentID) + "/events",
		Method: http.MethodGet,
	}

	return resp
}

// NewAgreementResponse renders an agreement.
func NewAgreementResponse(a *agreement.Agreement) *AgreementResponse {
	return &AgreementResponse{
		AgreementID:   a.ID,
		AgreementType: string(a.Type),
		ReturnURL:     a.ReturnURL,
		CreatedDate:   a.CreatedDate,
		State:         StateResponse{Status: a.State},
	}
}

func toLinkResponse(l payment.Link) *LinkResponse {
	return &LinkResponse{
		Href:   l.Href,
		Method: l.Method,
		Type:   l.Type,
		Params: l.Params,
	}
}
