package types

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/streakforge/streakd/pkg/allowlist"
	"github.com/streakforge/streakd/pkg/cache"
	"github.com/streakforge/streakd/pkg/prefetch"
	"github.com/streakforge/streakd/pkg/streak"
)

// Config is the startup configuration, resolved once from the environment in
// Initialize and injected. Nothing reads env at request time.
type Config struct {
	Addr            string
	GithubToken     string
	AllowlistPath   string
	CacheTTL        time.Duration
	PrefetchCron    string
	PrefetchEnabled bool
	PrefetchWorkers int
	RedisEnabled    bool
}

// ContributionSource is the upstream calendar and avatar provider.
type ContributionSource interface {
	Calendar(ctx context.Context, username string) ([]streak.Day, error)
	FetchAvatar(ctx context.Context, username string) ([]byte, error)
}

type App struct {
	Config Config
	Source ContributionSource
	Cache  *cache.Cache
	Allow  *allowlist.List
	Warmer *prefetch.Warmer
	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests.
	Server *http.Server
}

// Start starts the application and blocks until ctx is cancelled, then drains
// the server and releases resources.
func (a *App) Start(ctx context.Context) {
	if a.Warmer != nil {
		if err := a.Warmer.Start(ctx); err != nil {
			a.Logger.Error("Unable to start prefetch scheduler", zap.Error(err))
		}
	}

	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Warmer != nil {
		a.Warmer.Stop()
	}
	if err := a.Cache.Close(); err != nil {
		a.Logger.Error("Failed to close cache", zap.Error(err))
	}

	_ = a.Server.Shutdown(shutdownCtx)
	a.Logger.Info("Shutdown complete")
}
