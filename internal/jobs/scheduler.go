package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// AddSweeper runs s on spec (standard 5-field cron or @every). Each pass is
// bounded by timeout.
func (sc *Scheduler) AddSweeper(spec string, s *Sweeper, timeout time.Duration) error {
	_, err := sc.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		stats, err := s.Sweep(ctx)
		if err != nil {
			sc.log.Error("sweep failed", zap.Error(err))
			return
		}
		if stats.Scanned > 0 {
			sc.log.Info("sweep completed",
				zap.Int("scanned", stats.Scanned),
				zap.Int("resolved", stats.Resolved),
				zap.Int("failed", stats.Failed),
				zap.Int("skipped", stats.Skipped))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweeper %q: %w", spec, err)
	}
	return nil
}

func (sc *Scheduler) Start() {
	sc.cron.Start()
	sc.log.Info("cron scheduler started", zap.Int("jobs", len(sc.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (sc *Scheduler) Stop(ctx context.Context) {
	select {
	case <-sc.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
