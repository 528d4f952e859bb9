package notification

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/brisbanesurgical/storefront/internal/config"
	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	"github.com/brisbanesurgical/storefront/internal/providers/email"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type emailFake struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *emailFake) Send(_ context.Context, to []string, subject, body string, _ []email.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestNotifier(fake *emailFake) *Service {
	return New(Params{
		Log:   zap.NewNop(),
		Cfg:   config.Config{OperatorEmail: "orders@brisbanesurgical.example"},
		Email: fake,
	})
}

func hostileOrder() *orderdomain.Order {
	return &orderdomain.Order{
		OrderCode: "RESCAPE1TEST",
		Products: datatypes.NewJSONType([]orderdomain.OrderProduct{
			{Name: `Scalpel <img src=x onerror="alert(1)">`, Qty: 1, Price: 120},
		}),
		BillingInfo: datatypes.NewJSONType(orderdomain.ContactInfo{
			FullName: `<script>alert("pwn")</script>`,
			Email:    "jordan@example.com",
		}),
		PaymentMethod: orderdomain.MethodStripe,
		PayAmount:     120,
	}
}

func TestOrderPaidEscapesCustomerInput(t *testing.T) {
	fake := &emailFake{}
	svc := newTestNotifier(fake)

	svc.OrderPaid(context.Background(), hostileOrder(), "")

	assert.Len(t, fake.sent, 2)
	for _, mail := range fake.sent {
		assert.NotContains(t, mail.body, "<script>")
		assert.NotContains(t, mail.body, "onerror=\"alert(1)\"")
		assert.Contains(t, mail.body, "&lt;script&gt;")
	}
}

func TestOrderPlacedEscapesCustomerInput(t *testing.T) {
	fake := &emailFake{}
	svc := newTestNotifier(fake)

	svc.OrderPlaced(context.Background(), hostileOrder())

	assert.Len(t, fake.sent, 2)
	for _, mail := range fake.sent {
		assert.NotContains(t, mail.body, "<script>")
		assert.Contains(t, mail.body, "&lt;img src=x")
	}
}

func TestOrderPaidSendsCustomerAndOperator(t *testing.T) {
	fake := &emailFake{}
	svc := newTestNotifier(fake)

	order := hostileOrder()
	svc.OrderPaid(context.Background(), order, "")

	if assert.Len(t, fake.sent, 2) {
		assert.Equal(t, []string{"jordan@example.com"}, fake.sent[0].to)
		assert.Equal(t, []string{"orders@brisbanesurgical.example"}, fake.sent[1].to)
		for _, mail := range fake.sent {
			assert.Contains(t, mail.subject, order.OrderCode)
		}
	}
}

func TestHtmlNameFallsBackWhenEmpty(t *testing.T) {
	assert.Equal(t, "there", htmlName(""))
	assert.Equal(t, "O&#39;Brien", htmlName("O'Brien"))
}

func TestItemTableEscapesProductNames(t *testing.T) {
	order := hostileOrder()
	table := itemTable(order)
	assert.False(t, strings.Contains(table, "<img"))
	assert.Contains(t, table, "&lt;img src=x onerror=&#34;alert(1)&#34;&gt;")
}
