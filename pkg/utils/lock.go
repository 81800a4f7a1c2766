package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another process owns the lock.
var ErrLockHeld = errors.New("lock held by another process")

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker hands out short-lived, cluster-wide mutexes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// RedisLocker is a Locker backed by redsync.
type RedisLocker struct {
	rs *redsync.Redsync
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rs: redsync.New(goredis.NewPool(rdb))}
}

// TryLock makes a single attempt. Any acquisition failure is reported as ErrLockHeld
// so callers skip the work instead of retrying.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error) {
	if key == "" {
		return nil, fmt.Errorf("lock key is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be > 0")
	}

	m := l.rs.NewMutex(key, redsync.WithExpiry(ttl), redsync.WithTries(1))
	if err := m.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLockHeld, key, err)
	}
	return func(ctx context.Context) error {
		ok, err := m.UnlockContext(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("lock %s expired before unlock", key)
		}
		return nil
	}, nil
}
