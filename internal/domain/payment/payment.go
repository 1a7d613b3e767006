package payment

// Link relations carried from the connector to clients.
const (
	RelSelf        = "self"
	RelNextURL     = "next_url"
	RelNextURLPost = "next_url_post"
	RelEvents      = "events"
)

// Link is a hypermedia link attached to a payment.
type Link struct {
	Href   string
	Method string
	Type   string
	Params map[string]string
}

// Payment is a card payment as known to the connector.
type Payment struct {
	ID              string
	Amount          int64
	Reference       string
	Description     string
	Status          string
	ReturnURL       string
	PaymentProvider string
	CreatedDate     string
	Language        string
	DelayedCapture  bool
	AgreementID     string

	// Links are keyed by relation.
	Links map[string]Link
}

// Link returns the link for rel, if any.
func (p *Payment) Link(rel string) (Link, bool) {
	l, ok := p.Links[rel]
	return l, ok
}

// Event is a single status change of a payment.
type Event struct {
	Status  string
	Updated string
}

// Events is the status history of a payment.
type Events struct {
	PaymentID string
	Events    []Event
}
