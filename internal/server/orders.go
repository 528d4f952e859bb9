package server

import (
	"errors"
	"net/http"
	"strings"

	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	"github.com/gin-gonic/gin"
)

const orderCacheControl = "s-maxage=60, stale-while-revalidate"

// GetOrder resolves an order by checkout session id first, internal id as
// fallback. Session-keyed responses use the reduced projection so the success
// page never sees the internal id.
func (s *Server) GetOrder(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	id := strings.TrimSpace(c.Query("id"))

	order, err := s.orders.FindByIDOrSession(c.Request.Context(), orderdomain.FindOrderRequest{
		ID:        id,
		SessionID: sessionID,
	})
	if err != nil {
		if errors.Is(err, orderdomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", orderCacheControl)
	if sessionID != "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "order": order.Public()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// TrackOrder is the customer-facing tracker: the id parameter is the order
// code, and the response always carries the reduced projection.
func (s *Server) TrackOrder(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	code := strings.TrimSpace(c.Query("id"))

	var (
		order *orderdomain.Order
		err   error
	)
	if sessionID != "" {
		order, err = s.orders.FindByIDOrSession(c.Request.Context(), orderdomain.FindOrderRequest{
			SessionID: sessionID,
		})
	} else {
		order, err = s.orders.FindByCode(c.Request.Context(), code)
	}
	if err != nil {
		if errors.Is(err, orderdomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", orderCacheControl)
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order.Public()})
}
