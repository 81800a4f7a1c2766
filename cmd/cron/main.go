// Command cron runs the background jobs: the hourly promo expiry sweep.
// Several replicas may run; a redis lock keeps each sweep single-flight.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-orders/internal/config"
	"storefront-orders/internal/promo"
	"storefront-orders/internal/store/postgres"
	"storefront-orders/pkg/logger"
	"storefront-orders/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env).With("process", "cron")
	slog.SetDefault(log)

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

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

	promoSvc := promo.NewService(postgres.NewPromoRepo(db), postgres.NewProductRepo(db))
	sweeper := promo.NewSweeper(promoSvc, utils.NewRedisLocker(rdb), cfg.Promo.SweepSchedule, cfg.Promo.SweepLockTTL, log)
	if err := sweeper.Start(rootCtx); err != nil {
		log.Error("sweeper start failed", "err", err)
		os.Exit(1)
	}

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	select {
	case <-sweeper.Stop().Done():
	case <-time.After(30 * time.Second):
		log.Warn("running sweep did not finish before shutdown")
	}
}
