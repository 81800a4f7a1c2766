package promo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront-orders/pkg/logger"
	"storefront-orders/pkg/utils"

	"github.com/robfig/cron/v3"
)

const sweepLockKey = "promo:expire-sweep"

// Expirer is the single operation the sweeper drives.
type Expirer interface {
	MarkExpired(ctx context.Context) ([]string, error)
}

// Sweeper runs MarkExpired on a cron schedule. Each run holds a cluster-wide lock
// so only one replica sweeps at a time; the status-guarded UPDATE keeps a racing
// run harmless anyway.
type Sweeper struct {
	expirer  Expirer
	locker   utils.Locker
	schedule string
	lockTTL  time.Duration
	log      *slog.Logger

	cron *cron.Cron
}

func NewSweeper(expirer Expirer, locker utils.Locker, schedule string, lockTTL time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		locker:   locker,
		schedule: schedule,
		lockTTL:  lockTTL,
		log:      log,
	}
}

// Start registers the job and starts the scheduler. Runs use ctx for cancellation.
func (s *Sweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, utils.ErrLockHeld) {
			s.log.Error("promo sweep failed", "err", err)
		}
	}); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	s.log.Info("promo sweeper started", "schedule", s.schedule)
	return nil
}

// Stop stops scheduling and returns a context that is done once running jobs finish.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

// RunOnce performs a single locked sweep. A held lock yields utils.ErrLockHeld.
func (s *Sweeper) RunOnce(ctx context.Context) ([]string, error) {
	ctx = logger.With(ctx, s.log.With("job", "promo_expire"))

	unlock, err := s.locker.TryLock(ctx, sweepLockKey, s.lockTTL)
	if err != nil {
		logger.From(ctx).Info("promo sweep skipped", "reason", err.Error())
		return nil, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.From(ctx).Warn("promo sweep unlock failed", "err", err)
		}
	}()

	start := time.Now()
	codes, err := s.expirer.MarkExpired(ctx)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("promo sweep completed", "expired", len(codes), "duration_ms", time.Since(start).Milliseconds())
	return codes, nil
}
