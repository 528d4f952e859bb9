package receipt

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/brisbanesurgical/storefront/internal/config"
	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	"github.com/brisbanesurgical/storefront/internal/providers/pdf"
	"go.uber.org/zap"
)

// Service renders receipt PDFs and stores them at a path derived from the
// order code, so re-invocation overwrites the same artifact location.
type Service struct {
	log      *zap.Logger
	pdf      pdf.Provider
	dir      string
	basePath string
}

func New(log *zap.Logger, provider pdf.Provider, cfg config.Config) *Service {
	return &Service{
		log:      log.Named("receipt.service"),
		pdf:      provider,
		dir:      cfg.ReceiptDir,
		basePath: strings.TrimRight(cfg.ReceiptBasePath, "/"),
	}
}

func FileName(orderCode string) string {
	return fmt.Sprintf("receipt_%s.pdf", orderCode)
}

// LocalPath returns the on-disk location of the receipt for an order code.
func (s *Service) LocalPath(orderCode string) string {
	return filepath.Join(s.dir, FileName(orderCode))
}

func (s *Service) Generate(ctx context.Context, order *orderdomain.Order) (string, error) {
	data := buildReceiptData(order)

	reader, err := s.pdf.GenerateReceipt(ctx, data)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	filePath := s.LocalPath(order.OrderCode)
	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return "", err
	}

	ref := path.Join(s.basePath, FileName(order.OrderCode))
	s.log.Info("receipt generated",
		zap.String("order_code", order.OrderCode),
		zap.String("ref", ref),
	)
	return ref, nil
}

func buildReceiptData(order *orderdomain.Order) pdf.ReceiptData {
	billing := order.BillingInfo.Data()

	datePaid := ""
	if order.PaidAt != nil {
		datePaid = order.PaidAt.Format("02 Jan 2006 15:04 MST")
	}

	products := order.Products.Data()
	items := make([]pdf.ReceiptItem, 0, len(products))
	for _, p := range products {
		items = append(items, pdf.ReceiptItem{
			Description: p.Name,
			Qty:         p.Qty,
			UnitPrice:   formatAmount(p.Price),
			Amount:      formatAmount(float64(p.Qty) * p.Price),
		})
	}

	return pdf.ReceiptData{
		OrderCode:     order.OrderCode,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		DatePaid:      datePaid,
		CustomerName:  billing.FullName,
		CustomerEmail: billing.Email,
		Items:         items,
		Subtotal:      formatAmount(order.TotalPrice),
		Tax:           formatNonZero(order.Tax),
		Vat:           formatNonZero(order.Vat),
		Total:         formatAmount(order.PayAmount),
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatNonZero(v float64) string {
	if v == 0 {
		return ""
	}
	return formatAmount(v)
}
