package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/config"
	"github.com/yahyalegrini24/AttendEase/internal/roster"
)

// Reaper discards attendance runs nobody touched for maxIdle.
type Reaper interface {
	ReapIdle(ctx context.Context, maxIdle time.Duration) int
}

// Sweeper drops sign-in contexts idle for maxIdle.
type Sweeper interface {
	DropIdle(maxIdle time.Duration) int
}

// RosterSyncer reloads group rosters from their workbooks.
type RosterSyncer interface {
	Sync(ctx context.Context) (roster.Result, error)
}

// StartJobs schedules the idle reaper and the roster sync and starts the
// scheduler. The caller stops it on shutdown.
func StartJobs(cfg *config.Config, runs Reaper, contexts Sweeper, syncer RosterSyncer, logger *zap.Logger) (*cron.Cron, error) {
	std, err := zap.NewStdLogAt(logger.Named("cron"), zap.ErrorLevel)
	if err != nil {
		return nil, err
	}
	clog := cron.PrintfLogger(std)
	c := cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog)))

	_, err = c.AddFunc(cfg.ReaperSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		reaped := runs.ReapIdle(ctx, cfg.RunIdleTimeout)
		dropped := contexts.DropIdle(cfg.RefreshTokenTTL)
		if reaped > 0 || dropped > 0 {
			logger.Info("idle reaper", zap.Int("runs_discarded", reaped), zap.Int("contexts_dropped", dropped))
		}
	})
	if err != nil {
		return nil, err
	}

	if syncer != nil {
		_, err = c.AddFunc(cfg.RosterSyncSpec, func() {
			logger.Info("running roster sync job")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if _, err := syncer.Sync(ctx); err != nil {
				logger.Error("roster sync job failed", zap.Error(err))
			}
		})
		if err != nil {
			return nil, err
		}
	}

	c.Start()
	return c, nil
}
