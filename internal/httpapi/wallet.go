package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"storefront-orders/internal/audit"
	"storefront-orders/internal/wallet"

	"github.com/gin-gonic/gin"
)

func (h Handlers) GetWallet(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	w, err := h.Wallet.Get(c.Request.Context(), who.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// Wallet administration. Admin only (enforced by routes.go); the target user
// comes from the path.

func (h Handlers) AdminGetWallet(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	w, err := h.Wallet.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

type topUpRequest struct {
	AmountMinor int64 `json:"amount_minor"`
}

func (h Handlers) AdminTopUpWallet(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	w, err := h.Wallet.TopUp(c.Request.Context(), userID, req.AmountMinor)
	if err != nil {
		writeError(c, err)
		return
	}
	h.adminAction(c, func(s *audit.Service, by audit.Actor) error {
		return s.LogWalletAction(c.Request.Context(), by, audit.EventWalletTopUp, userID,
			fmt.Sprintf("credited %d", req.AmountMinor))
	})
	c.JSON(http.StatusOK, w)
}

func (h Handlers) AdminDeleteWallet(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	if err := h.Wallet.Delete(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	h.adminAction(c, func(s *audit.Service, by audit.Actor) error {
		return s.LogWalletAction(c.Request.Context(), by, audit.EventWalletDeleted, userID, "wallet deleted")
	})
	c.Status(http.StatusNoContent)
}

func (h Handlers) WalletTransactions(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}
	txs, err := h.Wallet.History(c.Request.Context(), who.UserID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if txs == nil {
		txs = []wallet.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
