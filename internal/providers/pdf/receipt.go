package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoProvider struct{}

func NewMaroto() *MarotoProvider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) GenerateReceipt(ctx context.Context, receipt ReceiptData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, "Payment Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	// Receipt Meta
	m.AddRow(25,
		col.New(6).Add(
			text.New("Order ID: "+receipt.OrderCode, props.Text{Top: 0}),
			text.New("Payment Method: "+receipt.PaymentMethod, props.Text{Top: 4}),
			text.New("Payment Status: "+receipt.PaymentStatus, props.Text{Top: 8}),
			text.New("Date: "+receipt.DatePaid, props.Text{Top: 12}),
		),
		col.New(6),
	)

	// Customer block
	m.AddRow(15,
		col.New(12).Add(
			text.New("Customer: "+receipt.CustomerName, props.Text{Top: 0}),
			text.New("Email: "+receipt.CustomerEmail, props.Text{Top: 5}),
		),
	)

	// Table Header
	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	// Items
	for _, item := range receipt.Items {
		m.AddRow(10,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	// Footer Totals
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, receipt.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	if receipt.Tax != "" {
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, "Tax", props.Text{Size: 9}),
			text.NewCol(2, receipt.Tax, props.Text{Size: 9, Align: align.Right}),
		)
	}
	if receipt.Vat != "" {
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, "VAT", props.Text{Size: 9}),
			text.NewCol(2, receipt.Vat, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, receipt.Total, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
