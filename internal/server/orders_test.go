package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newJSONBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func TestGetOrderBySession(t *testing.T) {
	srv, orders := newTestServer(t)
	order := placeAttachedOrder(t, orders, "cs_home_lookup")

	req := httptest.NewRequest(http.MethodGet, "/api/home/order?session_id=cs_home_lookup", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-maxage=60, stale-while-revalidate", rec.Header().Get("Cache-Control"))

	var body struct {
		Success bool           `json:"success"`
		Order   map[string]any `json:"order"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, order.OrderCode, body.Order["orderCode"])

	// Session-keyed lookups never expose the internal id.
	_, hasID := body.Order["id"]
	assert.False(t, hasID)
}

func TestGetOrderByID(t *testing.T) {
	srv, orders := newTestServer(t)
	order := placeAttachedOrder(t, orders, "cs_id_lookup")

	req := httptest.NewRequest(http.MethodGet, "/api/home/order?id="+order.ID.String(), nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool           `json:"success"`
		Order   map[string]any `json:"order"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, order.OrderCode, body.Order["orderCode"])
}

func TestGetOrderNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/home/order?session_id=cs_absent", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false}`, rec.Body.String())
}

func TestTrackOrderByCode(t *testing.T) {
	srv, orders := newTestServer(t)
	order := placeAttachedOrder(t, orders, "cs_track_lookup")

	req := httptest.NewRequest(http.MethodGet, "/api/order-track?id="+order.OrderCode, nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-maxage=60, stale-while-revalidate", rec.Header().Get("Cache-Control"))

	var body struct {
		Success bool           `json:"success"`
		Order   map[string]any `json:"order"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, order.OrderCode, body.Order["orderCode"])
	_, hasID := body.Order["id"]
	assert.False(t, hasID)
}

func TestCreateDirectOrderEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := `{
		"products": [{"name": "Suture Kit", "qty": 2, "price": 45.5}],
		"billingInfo": {"fullName": "Casey Lin", "email": "casey@example.com"},
		"paymentMethod": "cod"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/order", newJSONBody(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success      bool           `json:"success"`
		CreatedOrder map[string]any `json:"createdOrder"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "pending", body.CreatedOrder["status"])
	assert.Equal(t, 91.0, body.CreatedOrder["payAmount"])
}

func TestCreateDirectOrderRejectsEmptyCart(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := `{
		"products": [],
		"billingInfo": {"fullName": "Casey Lin", "email": "casey@example.com"},
		"paymentMethod": "cod"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/order", newJSONBody(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelOrderEndpoint(t *testing.T) {
	srv, orders := newTestServer(t)
	order := placeAttachedOrder(t, orders, "cs_cancel")

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/cancel/"+order.OrderCode, nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	lookup := httptest.NewRequest(http.MethodGet, "/api/order-track?id="+order.OrderCode, nil)
	rec = httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, lookup)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
