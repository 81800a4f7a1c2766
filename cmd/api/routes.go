package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"storefront-orders/internal/httpapi"
	"storefront-orders/internal/rbac"
	"storefront-orders/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type routeDeps struct {
	authMW    gin.HandlerFunc
	devLogin  bool
	readiness func(ctx context.Context) error
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if err := deps.readiness(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// NOTE: token issuance without credentials; never registered in production.
	if deps.devLogin {
		r.POST("/v1/auth/login", h.Login)
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(deps.authMW)
	v1.Use(rbac.RequireAnyRole(rbac.RoleCustomer))
	{
		v1.GET("/me", h.Me)
		v1.GET("/order-statuses", h.ListOrderStatuses)

		// ORDER routes
		ordersGroup := v1.Group("/orders")
		{
			ordersGroup.POST("/checkout", h.Checkout)
			ordersGroup.GET("", h.GetOrders)
			ordersGroup.POST("/:order_id/cancel", h.CancelOrder)
		}

		// WALLET routes
		walletGroup := v1.Group("/wallet")
		{
			walletGroup.GET("", h.GetWallet)
			walletGroup.GET("/transactions", h.WalletTransactions)
		}

		// CART routes
		cartGroup := v1.Group("/cart")
		{
			cartGroup.GET("", h.GetCart)
			cartGroup.POST("/items", h.AddCartItem)
			cartGroup.PATCH("/items/:line_id", h.UpdateCartItem)
			cartGroup.DELETE("/items/:line_id", h.RemoveCartItem)
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAdmin())
		{
			admin.PATCH("/orders/:order_id/status", h.UpdateOrderStatus)

			admin.GET("/wallets/:user_id", h.AdminGetWallet)
			admin.POST("/wallets/:user_id/topup", h.AdminTopUpWallet)
			admin.DELETE("/wallets/:user_id", h.AdminDeleteWallet)

			admin.POST("/promo-codes", h.CreatePromoCode)
			admin.GET("/promo-codes", h.ListPromoCodes)
			admin.POST("/promo-codes/:promo_id/inactivate", h.InactivatePromoCode)
			admin.POST("/promo-codes/expire", h.ExpirePromoCodes)

			admin.GET("/reports/orders", h.OrdersReport)
			admin.GET("/reports/spend", h.SpendReport)
		}
	}
}

// corsMiddleware returns nil when no origins are configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}

func readinessCheck(db *sql.DB, rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := utils.HealthCheck(ctx, db, 2*time.Second); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return rdb.Ping(ctx).Err()
	}
}
