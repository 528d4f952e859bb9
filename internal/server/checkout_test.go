package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	"github.com/brisbanesurgical/storefront/internal/payment/stripe"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

const checkoutRequestBody = `{
	"products": [{"name": "Surgical Mask Box", "qty": 2, "price": 49.95}],
	"billingInfo": {"fullName": "Jordan Avery", "email": "jordan@example.com"},
	"deliveryInfo": {"type": "standard", "cost": 10}
}`

func TestCreateCheckoutSessionRedirect(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_live_ok","url":"https://checkout.stripe.com/pay/cs_live_ok"}`))
	}))
	defer gateway.Close()

	env := newServerEnv(t, stripe.NewClientWithBaseURL("sk_test_key", gateway.URL))

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/create-checkout-session", newJSONBody(checkoutRequestBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		URL string `json:"url"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_live_ok", body.URL)

	// Session id lands on the draft so the webhook can find it later.
	order, err := env.orders.FindByIDOrSession(context.Background(), orderdomain.FindOrderRequest{SessionID: "cs_live_ok"})
	assert.NoError(t, err)
	assert.Equal(t, orderdomain.StatusDraft, order.Status)
	assert.Equal(t, orderdomain.PaymentStatusUnpaid, order.PaymentStatus)
}

func TestCreateCheckoutSessionGatewayFailure(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"An unknown error occurred"}}`))
	}))
	defer gateway.Close()

	env := newServerEnv(t, stripe.NewClientWithBaseURL("sk_test_key", gateway.URL))

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/create-checkout-session", newJSONBody(checkoutRequestBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// The draft survives the failed gateway call, unattached.
	var persisted []orderdomain.Order
	assert.NoError(t, env.db.Find(&persisted).Error)
	if assert.Len(t, persisted, 1) {
		assert.Equal(t, orderdomain.StatusDraft, persisted[0].Status)
		assert.Equal(t, orderdomain.PaymentStatusUnpaid, persisted[0].PaymentStatus)
		assert.Nil(t, persisted[0].StripeSessionID)
	}
}

func TestBuildCheckoutLinesMatchesPayAmount(t *testing.T) {
	order := &orderdomain.Order{
		OrderCode: "RLINES123ABC",
		Products: datatypes.NewJSONType([]orderdomain.OrderProduct{
			{Name: "Scalpel Set", Qty: 1, Price: 120},
			{Name: "Gauze Pack", Qty: 3, Price: 15},
		}),
		DeliveryInfo: datatypes.NewJSONType(orderdomain.Delivery{Type: "express", Cost: 20}),
		Tax:          16.5,
		Vat:          8.25,
		PayAmount:    209.75,
	}

	lines := buildCheckoutLines(order)

	var sum float64
	for _, line := range lines {
		sum += line.UnitPrice * float64(line.Quantity)
	}
	assert.InDelta(t, order.PayAmount, sum, 0.001)
	assert.Len(t, lines, 5)
}

func TestBuildCheckoutLinesCouponConsolidates(t *testing.T) {
	order := &orderdomain.Order{
		OrderCode: "RCOUPON99XYZ",
		Products: datatypes.NewJSONType([]orderdomain.OrderProduct{
			{Name: "Scalpel Set", Qty: 1, Price: 200},
		}),
		Coupon:    datatypes.NewJSONType(orderdomain.Coupon{Code: "SAVE10", Discount: 10}),
		PayAmount: 190,
	}

	lines := buildCheckoutLines(order)

	if assert.Len(t, lines, 1) {
		assert.Equal(t, "Order RCOUPON99XYZ", lines[0].Name)
		assert.Equal(t, int64(1), lines[0].Quantity)
		assert.InDelta(t, order.PayAmount, lines[0].UnitPrice, 0.001)
	}
}
