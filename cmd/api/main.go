package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-orders/internal/audit"
	"storefront-orders/internal/auth"
	"storefront-orders/internal/cart"
	"storefront-orders/internal/config"
	"storefront-orders/internal/httpapi"
	"storefront-orders/internal/orders"
	"storefront-orders/internal/promo"
	"storefront-orders/internal/reporting"
	"storefront-orders/internal/store/postgres"
	"storefront-orders/internal/wallet"
	"storefront-orders/pkg/logger"
	"storefront-orders/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: cfg.DB.MaxOpenConns})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(rootCtx, db); err != nil {
			log.Error("schema migration failed", "err", err)
			os.Exit(1)
		}
		log.Info("schema applied")
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	orderStore := postgres.NewOrderStore(db)
	registry, err := orders.LoadRegistry(rootCtx, orderStore)
	if err != nil {
		log.Error("status registry load failed", "err", err)
		os.Exit(1)
	}

	products := postgres.NewProductRepo(db)
	orderSvc := orders.NewService(orderStore, registry)
	orderSvc.UseGuard(orders.NewRedisGuard(rdb, cfg.Checkout.GuardTTL))

	h := httpapi.Handlers{
		Auth:    authManager,
		Orders:  orderSvc,
		Wallet:  wallet.NewService(postgres.NewWalletStore(db)),
		Promo:   promo.NewService(postgres.NewPromoRepo(db), products),
		Cart:    cart.NewService(postgres.NewCartRepo(db), products),
		Reports: reporting.NewService(postgres.NewReportRepo(db)),
		Audit:   audit.NewService(postgres.NewAuditRepo(db)),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	if mw := corsMiddleware(cfg.App.CORSAllowOrigins); mw != nil {
		r.Use(mw)
	}

	registerRoutes(r, h, routeDeps{
		authMW:    auth.RequireAccessToken(authManager),
		devLogin:  !cfg.IsProduction(),
		readiness: readinessCheck(db, rdb),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
