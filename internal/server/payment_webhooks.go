package server

import (
	"errors"
	"io"
	"net/http"

	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	paymentdomain "github.com/brisbanesurgical/storefront/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe events are a few KB; anything larger is not a webhook we handle.
const maxWebhookBodyBytes = 1 << 20

// HandleStripeWebhook verifies and applies a Stripe event. Everything past
// signature verification acknowledges with {received:true}: the gateway
// retries on non-2xx, and a retry cannot fix an unknown session or an event
// type we do not handle.
func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	if err := s.adapter.Verify(ctx, payload, c.Request.Header); err != nil {
		s.metrics.RecordWebhookEvent("unknown", "rejected")
		AbortWithError(c, err)
		return
	}

	event, err := s.adapter.Parse(ctx, payload)
	if err != nil {
		// The signature already proved origin, so a payload we cannot use
		// is acknowledged rather than bounced back for redelivery.
		if !errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.log.Warn("webhook payload not usable", zap.Error(err))
		}
		s.metrics.RecordWebhookEvent("ignored", "acknowledged")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if !event.Paid() {
		s.metrics.RecordWebhookEvent(event.Type, "unpaid")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	_, won, err := s.orders.ApplyPaidTransition(ctx, event.SessionID, orderdomain.MethodStripe)
	if errors.Is(err, orderdomain.ErrNotFound) {
		// The session id never landed on the order (attachment lost after
		// session creation). The metadata written at checkout carries the
		// internal id; attach and retry before giving up.
		if id, parseErr := snowflake.ParseString(event.OrderID()); parseErr == nil {
			if attachErr := s.orders.AttachStripeSession(ctx, id, event.SessionID); attachErr == nil {
				_, won, err = s.orders.ApplyPaidTransition(ctx, event.SessionID, orderdomain.MethodStripe)
			}
		}
	}
	switch {
	case errors.Is(err, orderdomain.ErrNotFound):
		// Acknowledge: the session does not map to any order we hold, and
		// a gateway retry would only deliver the same miss.
		s.log.Warn("webhook session matched no order",
			zap.String("session_id", event.SessionID),
			zap.String("event_id", event.ProviderEventID),
		)
		s.metrics.RecordWebhookEvent(event.Type, "orphaned")
	case err != nil:
		AbortWithError(c, err)
		return
	case won:
		s.metrics.RecordWebhookEvent(event.Type, "applied")
	default:
		s.metrics.RecordWebhookEvent(event.Type, "duplicate")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
