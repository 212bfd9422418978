// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/projects/events"
	"github.com/drafte-app/drafte-backend/internal/projects/lock"
	"github.com/drafte-app/drafte-backend/internal/projects/service"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
)

const (
	DefaultStaleAfter = 10 * time.Minute
	defaultBatch      = 50
	sweepLockTTL      = time.Minute
)

type Store interface {
	ListUnresolved(ctx context.Context, cutoff time.Time, limit int) ([]domain.Project, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

type Resolver interface {
	CreateResolutionSpec(ctx context.Context, projectID string, out *discovery.Output) (*service.ResolutionResult, error)
}

// SweepStats summarizes one pass.
type SweepStats struct {
	Scanned  int
	Resolved int
	Failed   int
	Skipped  int
}

// Sweeper finishes projects whose discovery was persisted but whose
// resolution never ran, typically after a crash mid-turn.
type Sweeper struct {
	store      Store
	resolver   Resolver
	locker     lock.Locker
	pub        events.Publisher
	staleAfter time.Duration
	batch      int
	log        *zap.Logger
	now        func() time.Time
}

func NewSweeper(store Store, resolver Resolver, locker lock.Locker, pub events.Publisher, staleAfter time.Duration, log *zap.Logger) *Sweeper {
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		store:      store,
		resolver:   resolver,
		locker:     locker,
		pub:        pub,
		staleAfter: staleAfter,
		batch:      defaultBatch,
		log:        log,
		now:        time.Now,
	}
}

// Sweep makes one pass. Projects locked by a running turn are skipped and
// picked up on a later pass.
func (s *Sweeper) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	cutoff := s.now().Add(-s.staleAfter)

	stale, err := s.store.ListUnresolved(ctx, cutoff, s.batch)
	if err != nil {
		return stats, err
	}
	stats.Scanned = len(stale)

	for _, p := range stale {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		release, err := s.locker.Acquire(ctx, p.ID, sweepLockTTL)
		if err != nil {
			if errors.Is(err, lock.ErrHeld) {
				stats.Skipped++
				continue
			}
			return stats, err
		}

		ok := s.resolve(ctx, p)
		release()
		if ok {
			stats.Resolved++
		} else {
			stats.Failed++
		}
	}
	return stats, nil
}

func (s *Sweeper) resolve(ctx context.Context, p domain.Project) bool {
	log := s.log.With(zap.String("project_id", p.ID))

	res, err := s.resolver.CreateResolutionSpec(ctx, p.ID, nil)
	if err == nil && res.Success {
		log.Info("stale project resolved", zap.Int("components", res.ComponentCount))
		return true
	}

	if err != nil {
		log.Warn("stale project resolution errored", zap.Error(err))
	} else {
		log.Warn("stale project resolution rejected", zap.String("message", res.Message))
	}
	if uerr := s.store.UpdateStatus(ctx, p.ID, domain.StatusFailed); uerr != nil {
		log.Error("mark project failed", zap.Error(uerr))
		return false
	}
	s.pub.StatusChanged(ctx, p.ID, domain.StatusFailed)
	return false
}
