package httpapi

import (
	"fmt"
	"net/http"

	"storefront-orders/internal/audit"
	"storefront-orders/internal/orders"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	PromoCode string               `json:"promo_code"`
	Address   *orders.AddressInput `json:"address"`
}

// Checkout places an order from the caller's cart.
func (h Handlers) Checkout(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	var req checkoutRequest
	// An empty body is a checkout without promo or new address.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}

	res, err := h.Orders.Checkout(c.Request.Context(), orders.CheckoutRequest{
		UserID:    who.UserID,
		PromoCode: req.PromoCode,
		Address:   req.Address,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetOrders lists orders. Customers only ever see their own; admins may filter
// by user_id and order_id.
func (h Handlers) GetOrders(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	userID, ok := optionalQueryID(c, "user_id")
	if !ok {
		return
	}
	orderID, ok := optionalQueryID(c, "order_id")
	if !ok {
		return
	}
	if !who.Admin {
		uid := who.UserID
		userID = &uid
	}

	list, err := h.Orders.GetOrders(c.Request.Context(), orders.Filter{UserID: userID, OrderID: orderID})
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h Handlers) CancelOrder(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	o, err := h.Orders.Cancel(c.Request.Context(), orderID, who)
	if err != nil {
		writeError(c, err)
		return
	}
	if who.Admin && o.UserID != who.UserID {
		h.adminAction(c, func(s *audit.Service, by audit.Actor) error {
			return s.LogOrderAction(c.Request.Context(), by, audit.EventOrderCancelled, o.ID,
				fmt.Sprintf("cancelled order of user %d", o.UserID))
		})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled and amount refunded.", "order": o})
}

type updateStatusRequest struct {
	StatusID int64 `json:"status_id"`
}

// UpdateOrderStatus is admin only (enforced by routes.go).
func (h Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StatusID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "status_id required"})
		return
	}
	o, err := h.Orders.UpdateStatus(c.Request.Context(), orderID, req.StatusID)
	if err != nil {
		writeError(c, err)
		return
	}
	h.adminAction(c, func(s *audit.Service, by audit.Actor) error {
		return s.LogOrderAction(c.Request.Context(), by, audit.EventOrderStatusUpdated, o.ID,
			fmt.Sprintf("status set to %s", o.Status))
	})
	c.JSON(http.StatusOK, o)
}

func (h Handlers) ListOrderStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"statuses": h.Orders.Statuses()})
}
