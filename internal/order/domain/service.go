package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateOrderRequest struct {
	Products     []OrderProduct
	BillingInfo  ContactInfo
	ShippingInfo ContactInfo
	DeliveryInfo Delivery
	Coupon       Coupon
	Method       string
}

// FindOrderRequest looks an order up by payment-session id first, falling
// back to the internal id.
type FindOrderRequest struct {
	ID        string
	SessionID string
}

type Service interface {
	// CreateDraft persists a new order in draft/unpaid state for a hosted
	// checkout attempt.
	CreateDraft(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// SubmitDirect persists and confirms an order paid out-of-band
	// (cash-on-delivery, wallet); the order lands in pending status
	// immediately and placement notifications are dispatched.
	SubmitDirect(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// AttachStripeSession writes the checkout session id onto the order
	// exactly once.
	AttachStripeSession(ctx context.Context, id snowflake.ID, sessionID string) error

	// ApplyPaidTransition marks the order behind sessionID as paid. The
	// returned bool reports whether this call won the transition; a
	// duplicate delivery no-ops with false. Receipt generation and
	// notifications run best-effort after the winning commit.
	ApplyPaidTransition(ctx context.Context, sessionID string, method string) (*Order, bool, error)

	// CancelDraft removes an abandoned draft order. Absent or non-draft
	// orders are a no-op.
	CancelDraft(ctx context.Context, orderCode string) error

	FindByIDOrSession(ctx context.Context, req FindOrderRequest) (*Order, error)
	FindByCode(ctx context.Context, orderCode string) (*Order, error)
}

// ReceiptGenerator renders and stores the receipt artifact for a paid order,
// returning the stored reference.
type ReceiptGenerator interface {
	Generate(ctx context.Context, order *Order) (string, error)
}

// Notifier dispatches transactional order emails. Implementations report
// failures through logs, never through errors: a failed send must not reach
// back into the paid transition.
type Notifier interface {
	OrderPaid(ctx context.Context, order *Order, receiptRef string)
	OrderPlaced(ctx context.Context, order *Order)
}

var (
	ErrEmptyCart           = errors.New("empty_cart")
	ErrMissingBillingEmail = errors.New("missing_billing_email")
	ErrInvalidMethod       = errors.New("invalid_payment_method")
	ErrNotFound            = errors.New("not_found")
	ErrCodeConflict        = errors.New("order_code_conflict")
	ErrSessionConflict     = errors.New("session_conflict")
)
