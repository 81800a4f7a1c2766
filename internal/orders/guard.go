package orders

import (
	"context"
	"fmt"
	"time"

	"storefront-orders/pkg/logger"
	"storefront-orders/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Guard rejects a second concurrent checkout for the same user before it
// reaches the database. Correctness still rests on the row locks.
type Guard interface {
	Acquire(ctx context.Context, userID int64) (release func(), err error)
}

// RedisGuard caps in-flight checkouts per user at one using the shared
// concurrency-cap scripts. The TTL frees slots leaked by crashed processes.
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func checkoutGuardKey(userID int64) string {
	return fmt.Sprintf("checkout:inflight:user:%d", userID)
}

// Acquire fails open when redis is unavailable.
func (g *RedisGuard) Acquire(ctx context.Context, userID int64) (func(), error) {
	key := checkoutGuardKey(userID)
	ok, err := utils.AcquireConcurrencyCap(ctx, g.rdb, key, 1, g.ttl)
	if err != nil {
		logger.From(ctx).Warn("checkout guard unavailable", "err", err)
		return func() {}, nil
	}
	if !ok {
		return nil, ErrCheckoutInProgress
	}
	return func() {
		if err := utils.ReleaseConcurrencyCap(context.WithoutCancel(ctx), g.rdb, key); err != nil {
			logger.From(ctx).Warn("checkout guard release failed", "err", err)
		}
	}, nil
}
