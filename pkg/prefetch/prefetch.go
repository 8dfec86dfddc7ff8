// Package prefetch keeps cached calendars warm for allow-listed users so
// badge requests are usually served without a synchronous upstream fetch.
package prefetch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/streakforge/streakd/pkg/allowlist"
	"github.com/streakforge/streakd/pkg/cache"
	"github.com/streakforge/streakd/pkg/streak"
)

// Source is the upstream calendar provider.
type Source interface {
	Calendar(ctx context.Context, username string) ([]streak.Day, error)
}

// Warmer refreshes cached calendars for every allow-listed username on a
// cron schedule, fanning out over a bounded worker pool.
type Warmer struct {
	source Source
	cache  *cache.Cache
	list   *allowlist.List
	pool   pond.Pool
	cron   *cron.Cron
	spec   string
	logger *zap.Logger
}

// New creates a Warmer. workers bounds the upstream fan-out.
func New(source Source, cc *cache.Cache, list *allowlist.List, spec string, workers int, logger *zap.Logger) *Warmer {
	if workers <= 0 {
		workers = 4
	}
	return &Warmer{
		source: source,
		cache:  cc,
		list:   list,
		pool:   pond.NewPool(workers),
		spec:   spec,
		logger: logger,
	}
}

// Start registers the cron schedule and begins ticking. Each run is bounded
// so a stuck upstream cannot pile cycles on top of each other.
func (w *Warmer) Start(ctx context.Context) error {
	w.cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := w.cron.AddFunc(w.spec, func() {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		w.Run(rctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("Prefetch scheduler started", zap.String("cronSpec", w.spec))
	return nil
}

// Run performs one warm cycle over the current allow list.
func (w *Warmer) Run(ctx context.Context) {
	usernames := w.list.Usernames()
	if len(usernames) == 0 {
		return
	}

	start := time.Now()
	var warmed, failed atomic.Int64

	group := w.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, username := range usernames {
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			days, err := w.source.Calendar(groupCtx, username)
			if err != nil {
				w.logger.Warn("Prefetch failed",
					zap.String("username", username),
					zap.Error(err))
				failed.Add(1)
				return
			}
			w.cache.Set(groupCtx, username, days)
			warmed.Add(1)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		w.logger.Warn("Prefetch group encountered error", zap.Error(err))
	}

	w.logger.Info("Prefetch cycle complete",
		zap.Int64("warmed", warmed.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Duration("took", time.Since(start)))
}

// Stop halts the scheduler and drains in-flight work.
func (w *Warmer) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	w.pool.StopAndWait()
}
