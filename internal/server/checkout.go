package server

import (
	"net/http"

	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	paymentdomain "github.com/brisbanesurgical/storefront/internal/payment/domain"
	"github.com/brisbanesurgical/storefront/internal/payment/stripe"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type orderRequest struct {
	Products      []orderdomain.OrderProduct `json:"products"`
	BillingInfo   orderdomain.ContactInfo    `json:"billingInfo"`
	ShippingInfo  orderdomain.ContactInfo    `json:"shippingInfo"`
	DeliveryInfo  orderdomain.Delivery       `json:"deliveryInfo"`
	Coupon        orderdomain.Coupon         `json:"coupon"`
	PaymentMethod string                     `json:"paymentMethod"`
}

func (r orderRequest) toCreateRequest() orderdomain.CreateOrderRequest {
	return orderdomain.CreateOrderRequest{
		Products:     r.Products,
		BillingInfo:  r.BillingInfo,
		ShippingInfo: r.ShippingInfo,
		DeliveryInfo: r.DeliveryInfo,
		Coupon:       r.Coupon,
		Method:       r.PaymentMethod,
	}
}

// CreateCheckoutSession persists a draft order, opens a hosted checkout
// session for it, and returns the redirect URL. A gateway failure leaves the
// draft behind for the client to retry or cancel.
func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	create := req.toCreateRequest()
	create.Method = orderdomain.MethodStripe

	order, err := s.orders.CreateDraft(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	session, err := s.checkout.CreateCheckoutSession(c.Request.Context(), stripe.CheckoutParams{
		OrderID:       order.ID.String(),
		OrderCode:     order.OrderCode,
		CustomerEmail: order.BillingInfo.Data().Email,
		Lines:         buildCheckoutLines(order),
		SuccessURL:    s.cfg.SiteURL + "/checkout/success/{CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.SiteURL + "/checkout/cancel/" + order.OrderCode,
	})
	if err != nil {
		s.log.Error("checkout session creation failed",
			zap.String("order_code", order.OrderCode),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	if err := s.orders.AttachStripeSession(c.Request.Context(), order.ID, session.ID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": session.URL})
}

// buildCheckoutLines expands the persisted order into gateway line items that
// sum exactly to payAmount. Stripe line items cannot carry a negative amount,
// so a discounted order is charged as a single consolidated line instead of
// an itemized breakdown.
func buildCheckoutLines(order *orderdomain.Order) []paymentdomain.CheckoutLine {
	if order.Coupon.Data().Discount > 0 {
		return []paymentdomain.CheckoutLine{{
			Name:      "Order " + order.OrderCode,
			Quantity:  1,
			UnitPrice: order.PayAmount,
		}}
	}

	products := order.Products.Data()
	lines := make([]paymentdomain.CheckoutLine, 0, len(products)+3)
	for _, p := range products {
		lines = append(lines, paymentdomain.CheckoutLine{
			Name:      p.Name,
			Quantity:  p.Qty,
			UnitPrice: p.Price,
		})
	}
	if order.Tax > 0 {
		lines = append(lines, paymentdomain.CheckoutLine{Name: "Tax", Quantity: 1, UnitPrice: order.Tax})
	}
	if order.Vat > 0 {
		lines = append(lines, paymentdomain.CheckoutLine{Name: "VAT", Quantity: 1, UnitPrice: order.Vat})
	}
	if cost := order.DeliveryInfo.Data().Cost; cost > 0 {
		lines = append(lines, paymentdomain.CheckoutLine{Name: "Delivery", Quantity: 1, UnitPrice: cost})
	}
	return lines
}

// CreateOrder places an order paid out-of-band (cash on delivery, wallet).
func (s *Server) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.orders.SubmitDirect(c.Request.Context(), req.toCreateRequest())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"createdOrder": order,
	})
}

// CancelOrder removes an abandoned draft. It is deliberately idempotent: a
// second cancel, or a cancel racing a paid transition, returns success
// without touching a non-draft order.
func (s *Server) CancelOrder(c *gin.Context) {
	if err := s.orders.CancelDraft(c.Request.Context(), c.Param("orderCode")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
