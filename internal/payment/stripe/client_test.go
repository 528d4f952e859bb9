package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	paymentdomain "github.com/brisbanesurgical/storefront/internal/payment/domain"
)

func checkoutParams() CheckoutParams {
	return CheckoutParams{
		OrderID:       "1234567890",
		OrderCode:     "RABCD1234XYZ",
		CustomerEmail: "jordan@example.com",
		Lines: []paymentdomain.CheckoutLine{
			{Name: "Surgical Mask Box", Quantity: 2, UnitPrice: 49.95},
			{Name: "Delivery", Quantity: 1, UnitPrice: 10},
		},
		SuccessURL: "https://shop.example.com/checkout/success/{CHECKOUT_SESSION_ID}",
		CancelURL:  "https://shop.example.com/checkout/cancel/RABCD1234XYZ",
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotPath string
	var gotHeader http.Header
	var gotForm url.Values

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_123","url":"https://checkout.stripe.com/pay/cs_test_123"}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL("sk_test_key", ts.URL)
	session, err := client.CreateCheckoutSession(context.Background(), checkoutParams())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID != "cs_test_123" {
		t.Fatalf("session id = %q, want cs_test_123", session.ID)
	}
	if session.URL != "https://checkout.stripe.com/pay/cs_test_123" {
		t.Fatalf("session url = %q", session.URL)
	}

	if gotPath != "/v1/checkout/sessions" {
		t.Fatalf("path = %q", gotPath)
	}
	if got := gotHeader.Get("Authorization"); got != "Bearer sk_test_key" {
		t.Fatalf("authorization = %q", got)
	}
	if got := gotHeader.Get("Idempotency-Key"); got != "order:RABCD1234XYZ" {
		t.Fatalf("idempotency key = %q", got)
	}

	want := []struct {
		key   string
		value string
	}{
		{"mode", "payment"},
		{"success_url", "https://shop.example.com/checkout/success/{CHECKOUT_SESSION_ID}"},
		{"cancel_url", "https://shop.example.com/checkout/cancel/RABCD1234XYZ"},
		{"customer_email", "jordan@example.com"},
		{"metadata[order_id]", "1234567890"},
		{"metadata[order_code]", "RABCD1234XYZ"},
		{"line_items[0][price_data][currency]", "aud"},
		{"line_items[0][price_data][product_data][name]", "Surgical Mask Box"},
		{"line_items[0][price_data][unit_amount]", "4995"},
		{"line_items[0][quantity]", "2"},
		{"line_items[1][price_data][unit_amount]", "1000"},
		{"line_items[1][quantity]", "1"},
	}
	for _, field := range want {
		if got := gotForm.Get(field.key); got != field.value {
			t.Fatalf("form[%s] = %q, want %q", field.key, got, field.value)
		}
	}
}

func TestCreateCheckoutSessionGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL("sk_test_key", ts.URL)
	_, err := client.CreateCheckoutSession(context.Background(), checkoutParams())
	if !errors.Is(err, paymentdomain.ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
}

func TestCreateCheckoutSessionMissingID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL("sk_test_key", ts.URL)
	_, err := client.CreateCheckoutSession(context.Background(), checkoutParams())
	if !errors.Is(err, paymentdomain.ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
}

func TestCreateCheckoutSessionNoLines(t *testing.T) {
	client := NewClient("sk_test_key")
	params := checkoutParams()
	params.Lines = nil
	_, err := client.CreateCheckoutSession(context.Background(), params)
	if !errors.Is(err, paymentdomain.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestCreateCheckoutSessionMissingKey(t *testing.T) {
	client := NewClientWithBaseURL("  ", "http://127.0.0.1:0")
	_, err := client.CreateCheckoutSession(context.Background(), checkoutParams())
	if !errors.Is(err, paymentdomain.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}
