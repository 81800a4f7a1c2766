package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig is filled from REDIS_* variables. Zero values take the
// defaults applied in withDefaults.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration

	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

func orDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func (c RedisConfig) withDefaults() RedisConfig {
	c.DialTimeout = orDuration(c.DialTimeout, 3*time.Second)
	c.ReadTimeout = orDuration(c.ReadTimeout, 2*time.Second)
	c.WriteTimeout = orDuration(c.WriteTimeout, 2*time.Second)
	c.PingTimeout = orDuration(c.PingTimeout, 2*time.Second)
	c.PoolTimeout = orDuration(c.PoolTimeout, 4*time.Second)
	c.ConnMaxIdleTime = orDuration(c.ConnMaxIdleTime, 5*time.Minute)
	c.ConnMaxLifetime = orDuration(c.ConnMaxLifetime, 30*time.Minute)
	if c.PoolSize <= 0 {
		c.PoolSize = 20
	}
	c.MinIdleConns = max(c.MinIdleConns, 0)
	return c
}

// OpenRedis builds a client from cfg and fails unless a PING answers
// within PingTimeout.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	cfg = cfg.withDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Counter slots: KEYS[1] counts holders, ARGV[1] is the cap and ARGV[2]
// the expiry in ms. A full counter is left untouched and 0 is returned.
var concurrencyAcquireScript = redis.NewScript(`
local held = tonumber(redis.call('GET', KEYS[1]) or '0')
if held >= tonumber(ARGV[1]) then
  return 0
end
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

var concurrencyReleaseScript = redis.NewScript(`
if redis.call('DECR', KEYS[1]) <= 0 then
  redis.call('DEL', KEYS[1])
end
return 1
`)

func checkSlotArgs(rdb *redis.Client, key string) error {
	if rdb == nil {
		return errors.New("redis client is nil")
	}
	if key == "" {
		return errors.New("slot key is required")
	}
	return nil
}

// AcquireConcurrencyCap takes one of limit slots under key. It returns
// false when all slots are held. Every acquire refreshes the expiry so a
// holder that never releases frees its slot after ttl.
func AcquireConcurrencyCap(ctx context.Context, rdb *redis.Client, key string, limit int, ttl time.Duration) (bool, error) {
	if err := checkSlotArgs(rdb, key); err != nil {
		return false, err
	}
	if limit <= 0 || ttl <= 0 {
		return false, fmt.Errorf("slot limit and ttl must be positive, got %d and %s", limit, ttl)
	}
	n, err := concurrencyAcquireScript.Run(ctx, rdb, []string{key}, limit, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("acquire slot %s: %w", key, err)
	}
	return n == 1, nil
}

// ReleaseConcurrencyCap gives back a slot taken by AcquireConcurrencyCap.
func ReleaseConcurrencyCap(ctx context.Context, rdb *redis.Client, key string) error {
	if err := checkSlotArgs(rdb, key); err != nil {
		return err
	}
	if err := concurrencyReleaseScript.Run(ctx, rdb, []string{key}).Err(); err != nil {
		return fmt.Errorf("release slot %s: %w", key, err)
	}
	return nil
}
