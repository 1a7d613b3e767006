package payment

import "log/slog"

// Field names as they appear in the request body.
const (
	FieldAmount         = "amount"
	FieldReference      = "reference"
	FieldDescription    = "description"
	FieldReturnURL      = "return_url"
	FieldAgreementID    = "agreement_id"
	FieldLanguage       = "language"
	FieldDelayedCapture = "delayed_capture"
)

// Limits enforced on create-payment requests.
const (
	MinAmount            = 1
	MaxAmount            = 10_000_000
	MaxReferenceLength   = 255
	MaxDescriptionLength = 255
	MaxReturnURLLength   = 2000
	MaxAgreementIDLength = 26
)

// CreatePaymentRequest is a fully validated create-payment request.
// Only Parser builds one, so holding a value means every rule passed.
type CreatePaymentRequest struct {
	amount         int64
	reference      string
	description    string
	returnURL      string
	hasReturnURL   bool
	agreementID    string
	hasAgreementID bool
	language       Language
	hasLanguage    bool
	delayedCapture bool
	hasDelayed     bool
}

// Amount in minor units (pence).
func (r *CreatePaymentRequest) Amount() int64 { return r.amount }

// Reference is the service's own reference for the payment.
func (r *CreatePaymentRequest) Reference() string { return r.reference }

// Description is shown to the paying user.
func (r *CreatePaymentRequest) Description() string { return r.description }

// ReturnURL returns the return URL and whether one was supplied.
func (r *CreatePaymentRequest) ReturnURL() (string, bool) {
	return r.returnURL, r.hasReturnURL
}

// AgreementID returns the agreement ID and whether one was supplied.
func (r *CreatePaymentRequest) AgreementID() (string, bool) {
	return r.agreementID, r.hasAgreementID
}

// Language returns the payment page language and whether one was supplied.
func (r *CreatePaymentRequest) Language() (Language, bool) {
	return r.language, r.hasLanguage
}

// DelayedCapture returns the delayed capture flag and whether one was supplied.
func (r *CreatePaymentRequest) DelayedCapture() (value, ok bool) {
	return r.delayedCapture, r.hasDelayed
}

// LogValue implements slog.LogValuer.
func (r *CreatePaymentRequest) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64(FieldAmount, r.amount),
		slog.String(FieldReference, r.reference),
	}

	if r.hasAgreementID {
		attrs = append(attrs, slog.String(FieldAgreementID, r.agreementID))
	}

	if r.hasLanguage {
		attrs = append(attrs, slog.String(FieldLanguage, r.language.String()))
	}

	return slog.GroupValue(attrs...)
}
