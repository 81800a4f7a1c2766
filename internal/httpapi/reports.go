package httpapi

import (
	"net/http"
	"time"

	"storefront-orders/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Admin reports over a half-open [from, to) window given as RFC 3339 query params.

func reportRange(c *gin.Context) (reporting.TimeRange, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be an RFC 3339 timestamp"})
		return reporting.TimeRange{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be an RFC 3339 timestamp"})
		return reporting.TimeRange{}, false
	}
	return reporting.TimeRange{From: from.UTC(), To: to.UTC()}, true
}

func (h Handlers) OrdersReport(c *gin.Context) {
	rng, ok := reportRange(c)
	if !ok {
		return
	}
	userID, ok := optionalQueryID(c, "user_id")
	if !ok {
		return
	}
	out, err := h.Reports.OrdersSummary(c.Request.Context(), reporting.OrdersSummaryRequest{Range: rng, UserID: userID})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) SpendReport(c *gin.Context) {
	rng, ok := reportRange(c)
	if !ok {
		return
	}
	userID, ok := optionalQueryID(c, "user_id")
	if !ok {
		return
	}
	out, err := h.Reports.SpendSummary(c.Request.Context(), reporting.SpendSummaryRequest{Range: rng, UserID: userID})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
