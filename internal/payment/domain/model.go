package domain

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	EventTypeCheckoutCompleted = "checkout_completed"
)

// PaymentEvent is the provider-neutral form of a verified webhook
// notification.
type PaymentEvent struct {
	Provider        string
	ProviderEventID string
	Type            string
	SessionID       string
	PaymentIntentID string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	Metadata        map[string]string
	OccurredAt      time.Time
	RawPayload      []byte
}

// OrderID returns the internal order id embedded in the session metadata at
// checkout creation, used to recover an order when the session-id lookup
// misses.
func (e *PaymentEvent) OrderID() string {
	if e == nil {
		return ""
	}
	return e.Metadata["order_id"]
}

// Paid reports whether the event confirms a captured payment.
func (e *PaymentEvent) Paid() bool {
	return e != nil && e.Type == EventTypeCheckoutCompleted && e.PaymentStatus == "paid"
}

// CheckoutSession is a hosted-checkout session issued by the gateway.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutLine is one line item forwarded to the hosted checkout page.
type CheckoutLine struct {
	Name      string
	Quantity  int64
	UnitPrice float64
	Currency  string
}

// Adapter verifies and parses inbound gateway notifications.
type Adapter interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PaymentEvent, error)
}

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrInvalidConfig    = errors.New("invalid_config")
	ErrGateway          = errors.New("gateway_error")
)
