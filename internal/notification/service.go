package notification

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/brisbanesurgical/storefront/internal/config"
	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	"github.com/brisbanesurgical/storefront/internal/providers/email"
	"github.com/brisbanesurgical/storefront/internal/receipt"
	"github.com/brisbanesurgical/storefront/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	Email    email.Provider
	Receipts *receipt.Service   `optional:"true"`
	Metrics  *telemetry.Metrics `optional:"true"`
}

// Service sends transactional order emails. Every send is independent: a
// failed customer email never blocks the operator copy and vice versa, and
// failures surface only through logs and metrics.
type Service struct {
	log      *zap.Logger
	cfg      config.Config
	email    email.Provider
	receipts *receipt.Service
	metrics  *telemetry.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:      p.Log.Named("notification.service"),
		cfg:      p.Cfg,
		email:    p.Email,
		receipts: p.Receipts,
		metrics:  p.Metrics,
	}
}

func (s *Service) OrderPaid(ctx context.Context, order *orderdomain.Order, receiptRef string) {
	billing := order.BillingInfo.Data()
	attachments := s.receiptAttachment(order, receiptRef)

	subject := fmt.Sprintf("Payment received for order %s", order.OrderCode)
	if billing.Email != "" {
		s.send(ctx, "customer", billing.Email, subject, customerPaidBody(order), attachments)
	}
	if s.cfg.OperatorEmail != "" {
		s.send(ctx, "operator", s.cfg.OperatorEmail, subject, operatorPaidBody(order), attachments)
	}
}

func (s *Service) OrderPlaced(ctx context.Context, order *orderdomain.Order) {
	billing := order.BillingInfo.Data()

	subject := fmt.Sprintf("Order %s received", order.OrderCode)
	if billing.Email != "" {
		s.send(ctx, "customer", billing.Email, subject, customerPlacedBody(order), nil)
	}
	if s.cfg.OperatorEmail != "" {
		s.send(ctx, "operator", s.cfg.OperatorEmail, subject, operatorPlacedBody(order), nil)
	}
}

func (s *Service) send(ctx context.Context, recipient, to, subject, body string, attachments []email.Attachment) {
	if err := s.email.Send(ctx, []string{to}, subject, body, attachments); err != nil {
		s.log.Error("email delivery failed",
			zap.String("recipient", recipient),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		s.metrics.RecordEmailDelivery(recipient, "error")
		return
	}
	s.metrics.RecordEmailDelivery(recipient, "ok")
}

// receiptAttachment loads the stored receipt PDF for the order. A missing or
// unreadable file degrades to an email without attachment.
func (s *Service) receiptAttachment(order *orderdomain.Order, receiptRef string) []email.Attachment {
	if receiptRef == "" || s.receipts == nil {
		return nil
	}

	content, err := os.ReadFile(s.receipts.LocalPath(order.OrderCode))
	if err != nil {
		s.log.Warn("receipt attachment unavailable",
			zap.String("order_code", order.OrderCode),
			zap.Error(err),
		)
		return nil
	}

	return []email.Attachment{{
		Filename:    receipt.FileName(order.OrderCode),
		ContentType: "application/pdf",
		Content:     content,
	}}
}

func customerPaidBody(order *orderdomain.Order) string {
	billing := order.BillingInfo.Data()
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", htmlName(billing.FullName))
	fmt.Fprintf(&b, "<p>We have received your payment for order <strong>%s</strong>.</p>", order.OrderCode)
	b.WriteString(itemTable(order))
	fmt.Fprintf(&b, "<p>Total paid: <strong>$%.2f</strong></p>", order.PayAmount)
	b.WriteString("<p>Your receipt is attached. We will be in touch once your order ships.</p>")
	return b.String()
}

func operatorPaidBody(order *orderdomain.Order) string {
	billing := order.BillingInfo.Data()
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Order <strong>%s</strong> has been paid via %s.</p>", order.OrderCode, order.PaymentMethod)
	fmt.Fprintf(&b, "<p>Customer: %s &lt;%s&gt;</p>", htmlName(billing.FullName), html.EscapeString(billing.Email))
	b.WriteString(itemTable(order))
	fmt.Fprintf(&b, "<p>Total: <strong>$%.2f</strong></p>", order.PayAmount)
	return b.String()
}

func customerPlacedBody(order *orderdomain.Order) string {
	billing := order.BillingInfo.Data()
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", htmlName(billing.FullName))
	fmt.Fprintf(&b, "<p>Thanks for your order <strong>%s</strong>.</p>", order.OrderCode)
	b.WriteString(itemTable(order))
	fmt.Fprintf(&b, "<p>Amount due: <strong>$%.2f</strong> (%s)</p>", order.PayAmount, order.PaymentMethod)
	return b.String()
}

func operatorPlacedBody(order *orderdomain.Order) string {
	billing := order.BillingInfo.Data()
	var b strings.Builder
	fmt.Fprintf(&b, "<p>New order <strong>%s</strong> placed (%s).</p>", order.OrderCode, order.PaymentMethod)
	fmt.Fprintf(&b, "<p>Customer: %s &lt;%s&gt;</p>", htmlName(billing.FullName), html.EscapeString(billing.Email))
	b.WriteString(itemTable(order))
	fmt.Fprintf(&b, "<p>Amount due: <strong>$%.2f</strong></p>", order.PayAmount)
	return b.String()
}

func itemTable(order *orderdomain.Order) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, p := range order.Products.Data() {
		fmt.Fprintf(&b, "<li>%s &times; %d: $%.2f</li>", html.EscapeString(p.Name), p.Qty, float64(p.Qty)*p.Price)
	}
	b.WriteString("</ul>")
	return b.String()
}

// htmlName escapes the customer-supplied name for interpolation into an HTML
// body.
func htmlName(name string) string {
	if name == "" {
		return "there"
	}
	return html.EscapeString(name)
}
