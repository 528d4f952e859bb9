package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/brisbanesurgical/storefront/internal/payment/domain"
)

type checkoutSessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CheckoutParams describes one hosted-checkout attempt for one order.
type CheckoutParams struct {
	OrderID       string
	OrderCode     string
	CustomerEmail string
	Lines         []paymentdomain.CheckoutLine
	SuccessURL    string
	CancelURL     string
}

const defaultBaseURL = "https://api.stripe.com"

// Client creates hosted checkout sessions against the Stripe REST API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL targets an alternate gateway endpoint.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

// CreateCheckoutSession creates a payment-mode checkout session. The order
// code and internal id travel as session metadata so the webhook can recover
// the order even if the session-id lookup misses.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (paymentdomain.CheckoutSession, error) {
	if len(params.Lines) == 0 {
		return paymentdomain.CheckoutSession{}, paymentdomain.ErrInvalidConfig
	}

	values := url.Values{}
	values.Set("mode", "payment")
	values.Set("success_url", params.SuccessURL)
	values.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		values.Set("customer_email", params.CustomerEmail)
	}
	values.Set("metadata[order_id]", params.OrderID)
	values.Set("metadata[order_code]", params.OrderCode)

	for i, line := range params.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		currency := strings.ToLower(strings.TrimSpace(line.Currency))
		if currency == "" {
			currency = "aud"
		}
		values.Set(prefix+"[price_data][currency]", currency)
		values.Set(prefix+"[price_data][product_data][name]", line.Name)
		values.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(toMinorUnits(line.UnitPrice), 10))
		values.Set(prefix+"[quantity]", strconv.FormatInt(line.Quantity, 10))
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/checkout/sessions", values, "order:"+params.OrderCode)
	if err != nil {
		return paymentdomain.CheckoutSession{}, err
	}
	return paymentdomain.CheckoutSession{ID: resp.ID, URL: resp.URL}, nil
}

func (c *Client) doRequest(
	ctx context.Context,
	method string,
	path string,
	values url.Values,
	idempotencyKey string,
) (checkoutSessionResponse, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return checkoutSessionResponse{}, paymentdomain.ErrInvalidConfig
	}
	var bodyReader *strings.Reader
	if values != nil {
		bodyReader = strings.NewReader(values.Encode())
	} else {
		bodyReader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return checkoutSessionResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return checkoutSessionResponse{}, errors.Join(paymentdomain.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return checkoutSessionResponse{}, paymentdomain.ErrGateway
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			return checkoutSessionResponse{}, paymentdomain.ErrGateway
		}
		return checkoutSessionResponse{}, fmt.Errorf("%w: %s", paymentdomain.ErrGateway, message)
	}

	var session checkoutSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return checkoutSessionResponse{}, errors.Join(paymentdomain.ErrGateway, err)
	}
	if session.ID == "" {
		return checkoutSessionResponse{}, paymentdomain.ErrGateway
	}
	return session, nil
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
