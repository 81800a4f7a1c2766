package httpapi

import (
	"net/http"

	"storefront-orders/internal/cart"

	"github.com/gin-gonic/gin"
)

func (h Handlers) GetCart(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	lines, err := h.Cart.List(c.Request.Context(), who.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	if lines == nil {
		lines = []cart.Line{}
	}
	c.JSON(http.StatusOK, gin.H{"items": lines, "total_minor": cart.Total(lines)})
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

func (h Handlers) AddCartItem(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "product_id and quantity required"})
		return
	}
	line, err := h.Cart.Add(c.Request.Context(), who.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

type updateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h Handlers) UpdateCartItem(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	lineID, ok := pathID(c, "line_id")
	if !ok {
		return
	}
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	line, err := h.Cart.UpdateQuantity(c.Request.Context(), who.UserID, lineID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h Handlers) RemoveCartItem(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	lineID, ok := pathID(c, "line_id")
	if !ok {
		return
	}
	if err := h.Cart.Remove(c.Request.Context(), who.UserID, lineID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
