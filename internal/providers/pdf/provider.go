package pdf

import (
	"context"
	"io"
)

// ReceiptItem is one rendered line of the receipt's itemized table.
type ReceiptItem struct {
	Description string
	Qty         int64
	UnitPrice   string
	Amount      string
}

// ReceiptData carries the pre-formatted order snapshot rendered into the
// receipt document.
type ReceiptData struct {
	OrderCode     string
	PaymentMethod string
	PaymentStatus string
	DatePaid      string

	CustomerName  string
	CustomerEmail string

	Items    []ReceiptItem
	Subtotal string
	Tax      string
	Vat      string
	Total    string
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	return nil, nil
}
