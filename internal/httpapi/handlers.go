package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"storefront-orders/internal/audit"
	"storefront-orders/internal/auth"
	"storefront-orders/internal/cart"
	"storefront-orders/internal/failure"
	"storefront-orders/internal/orders"
	"storefront-orders/internal/promo"
	"storefront-orders/internal/rbac"
	"storefront-orders/internal/reporting"
	"storefront-orders/internal/wallet"
	"storefront-orders/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth    *auth.Manager
	Orders  *orders.Service
	Wallet  *wallet.Service
	Promo   *promo.Service
	Cart    *cart.Service
	Reports *reporting.Service

	// Audit is optional; admin actions are not recorded when nil.
	Audit *audit.Service
}

// --- Auth ---

type loginRequest struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair for any user id.
//
// NOTE: development only; routes.go registers it outside production. Real
// deployments get tokens from the identity provider.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID <= 0 || (req.Role != rbac.RoleCustomer && req.Role != rbac.RoleAdmin) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id and role (customer|admin) required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "role": role})
}

// --- shared helpers ---

// requester reads the caller identity placed by auth.RequireAccessToken.
func requester(c *gin.Context) (orders.Requester, bool) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return orders.Requester{}, false
	}
	role, _ := auth.Role(c.Request.Context())
	return orders.Requester{UserID: uid, Admin: rbac.IsAdmin(role)}, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// optionalQueryID parses an optional positive integer query parameter.
func optionalQueryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return nil, false
	}
	return &id, true
}

// adminAction records a privileged action. Failures are logged and never
// fail the request.
func (h Handlers) adminAction(c *gin.Context, log func(*audit.Service, audit.Actor) error) {
	if h.Audit == nil {
		return
	}
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	by := audit.Actor{UserID: uid, Role: role, IP: c.ClientIP()}
	if err := log(h.Audit, by); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(k failure.Kind) int {
	switch k {
	case failure.KindNotFound:
		return http.StatusNotFound
	case failure.KindValidation:
		return http.StatusBadRequest
	case failure.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders service errors. Integrity and unclassified errors are
// logged with detail and reported to the client without it.
func writeError(c *gin.Context, err error) {
	kind := failure.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.FromGin(c).Error("request failed", "kind", kind.String(), "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error", "code": failure.CodeOf(err)})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": failure.CodeOf(err)})
}
