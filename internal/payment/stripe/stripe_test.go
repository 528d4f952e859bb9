package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	paymentdomain "github.com/brisbanesurgical/storefront/internal/payment/domain"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed","data":{"object":{}}}`)
	timestamp := time.Now().Unix()

	header := buildStripeSignatureHeader(secret, payload, timestamp)
	reqHeader := http.Header{}
	reqHeader.Set("Stripe-Signature", header)

	adapter := &Adapter{webhookSecret: secret}
	if err := adapter.Verify(context.Background(), payload, reqHeader); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	reqHeader.Set("Stripe-Signature", buildStripeSignatureHeader("wrong", payload, timestamp))
	if err := adapter.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature error, got %v", err)
	}

	reqHeader.Del("Stripe-Signature")
	if err := adapter.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature error for missing header, got %v", err)
	}
}

func TestParseCheckoutCompleted(t *testing.T) {
	created := time.Now().UTC().Unix()
	event := map[string]any{
		"id":      "evt_checkout",
		"type":    "checkout.session.completed",
		"created": created,
		"data": map[string]any{
			"object": map[string]any{
				"id":             "cs_test_123",
				"payment_intent": "pi_123",
				"payment_status": "paid",
				"amount_total":   15000,
				"currency":       "aud",
				"created":        created,
				"metadata": map[string]any{
					"order_id":   "12345",
					"order_code": "RABCD1234XYZ",
				},
			},
		},
	}

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	adapter := &Adapter{webhookSecret: "whsec_test"}
	parsed, err := adapter.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if parsed.Type != paymentdomain.EventTypeCheckoutCompleted {
		t.Fatalf("expected type %s, got %s", paymentdomain.EventTypeCheckoutCompleted, parsed.Type)
	}
	if parsed.SessionID != "cs_test_123" {
		t.Fatalf("expected session id cs_test_123, got %s", parsed.SessionID)
	}
	if parsed.AmountTotal != 15000 {
		t.Fatalf("expected amount 15000, got %d", parsed.AmountTotal)
	}
	if parsed.Currency != "AUD" {
		t.Fatalf("expected currency AUD, got %s", parsed.Currency)
	}
	if !parsed.Paid() {
		t.Fatalf("expected event to report paid")
	}
	if parsed.OrderID() != "12345" {
		t.Fatalf("expected order id 12345, got %s", parsed.OrderID())
	}
	if parsed.Metadata["order_code"] != "RABCD1234XYZ" {
		t.Fatalf("expected order code in metadata, got %q", parsed.Metadata["order_code"])
	}
}

func TestParseUnpaidSessionNotPaid(t *testing.T) {
	payload := []byte(`{"id":"evt_unpaid","type":"checkout.session.completed","data":{"object":{"id":"cs_unpaid","payment_status":"unpaid"}}}`)

	adapter := &Adapter{webhookSecret: "whsec_test"}
	parsed, err := adapter.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if parsed.Paid() {
		t.Fatalf("expected unpaid session to not report paid")
	}
}

func TestParseIgnoredEventTypes(t *testing.T) {
	for _, eventType := range []string{
		"payment_intent.succeeded",
		"charge.refunded",
		"checkout.session.expired",
		"invoice.paid",
	} {
		payload := []byte(fmt.Sprintf(`{"id":"evt_x","type":"%s","data":{"object":{}}}`, eventType))

		adapter := &Adapter{webhookSecret: "whsec_test"}
		_, err := adapter.Parse(context.Background(), payload)
		if !errors.Is(err, paymentdomain.ErrEventIgnored) {
			t.Fatalf("expected %s to be ignored, got %v", eventType, err)
		}
	}
}

func TestParseInvalidPayload(t *testing.T) {
	adapter := &Adapter{webhookSecret: "whsec_test"}

	if _, err := adapter.Parse(context.Background(), []byte("not-json")); !errors.Is(err, paymentdomain.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload error, got %v", err)
	}
	if _, err := adapter.Parse(context.Background(), []byte(`{"type":"checkout.session.completed"}`)); !errors.Is(err, paymentdomain.ErrInvalidEvent) {
		t.Fatalf("expected invalid event error for missing id, got %v", err)
	}
}

func buildStripeSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}
