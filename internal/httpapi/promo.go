package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"storefront-orders/internal/audit"
	"storefront-orders/internal/promo"

	"github.com/gin-gonic/gin"
)

// Promo administration. All routes are admin only (enforced by routes.go).

func (h Handlers) CreatePromoCode(c *gin.Context) {
	var req promo.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	code, err := h.Promo.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.adminAction(c, func(s *audit.Service, by audit.Actor) error {
		return s.LogPromoAction(c.Request.Context(), by, audit.EventPromoCreated, code.ID, "created "+code.Code)
	})
	c.JSON(http.StatusCreated, code)
}

func (h Handlers) ListPromoCodes(c *gin.Context) {
	var typ *promo.Type
	if raw := c.Query("type"); raw != "" {
		t := promo.Type(strings.ToUpper(raw))
		if !t.Valid() {
			writeError(c, promo.ErrInvalidPromoType)
			return
		}
		typ = &t
	}
	codes, err := h.Promo.List(c.Request.Context(), typ)
	if err != nil {
		writeError(c, err)
		return
	}
	if codes == nil {
		codes = []promo.Code{}
	}
	c.JSON(http.StatusOK, gin.H{"promo_codes": codes})
}

func (h Handlers) InactivatePromoCode(c *gin.Context) {
	id, ok := pathID(c, "promo_id")
	if !ok {
		return
	}
	code, err := h.Promo.Inactivate(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.adminAction(c, func(s *audit.Service, by audit.Actor) error {
		return s.LogPromoAction(c.Request.Context(), by, audit.EventPromoInactivated, code.ID, "inactivated "+code.Code)
	})
	c.JSON(http.StatusOK, code)
}

// ExpirePromoCodes runs the expiry sweep on demand.
func (h Handlers) ExpirePromoCodes(c *gin.Context) {
	codes, err := h.Promo.MarkExpired(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	h.adminAction(c, func(s *audit.Service, by audit.Actor) error {
		return s.LogPromoAction(c.Request.Context(), by, audit.EventPromoSweep, 0, fmt.Sprintf("expired %d codes", len(codes)))
	})
	c.JSON(http.StatusOK, gin.H{"expired": codes})
}
