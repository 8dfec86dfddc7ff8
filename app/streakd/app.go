package streakd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/streakforge/streakd/app/streakd/types"
	"github.com/streakforge/streakd/pkg/allowlist"
	"github.com/streakforge/streakd/pkg/cache"
	"github.com/streakforge/streakd/pkg/github"
	"github.com/streakforge/streakd/pkg/logging"
	"github.com/streakforge/streakd/pkg/prefetch"
	"github.com/streakforge/streakd/pkg/redis"
	"github.com/streakforge/streakd/pkg/utils"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	cfg := types.Config{
		Addr:            utils.Env("ADDR", ":8000"),
		GithubToken:     utils.Env("GITHUB_TOKEN", ""),
		AllowlistPath:   utils.Env("ALLOWLIST_PATH", "allowed.json"),
		CacheTTL:        utils.EnvDuration("CACHE_TTL", 5*time.Minute),
		PrefetchCron:    utils.Env("PREFETCH_CRON", "0 */15 * * * *"),
		PrefetchEnabled: utils.EnvBool("PREFETCH_ENABLED", true),
		PrefetchWorkers: utils.EnvInt("PREFETCH_WORKERS", 4),
		RedisEnabled:    utils.EnvBool("REDIS_ENABLED", false),
	}

	// The service cannot talk to the contribution provider without a token;
	// refuse to start rather than fail every request.
	if cfg.GithubToken == "" {
		logger.Fatal("GITHUB_TOKEN is not set")
	}

	allow, err := allowlist.Load(cfg.AllowlistPath, logger)
	if err != nil {
		logger.Fatal("Unable to load allow list", zap.Error(err))
	}
	if werr := allow.Watch(ctx); werr != nil {
		logger.Warn("Allow list hot reload disabled", zap.Error(werr))
	}

	// Redis tier is optional; the in-process tier always works.
	var rdb *redis.Client
	if cfg.RedisEnabled {
		rdb, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Redis unavailable - falling back to in-process cache only", zap.Error(err))
			rdb = nil
		}
	} else {
		logger.Info("Redis disabled - using in-process cache only")
	}
	calendarCache := cache.New(cfg.CacheTTL, rdb, logger)

	source := github.NewClient(github.Opts{Token: cfg.GithubToken}, logger)

	var warmer *prefetch.Warmer
	if cfg.PrefetchEnabled {
		warmer = prefetch.New(source, calendarCache, allow, cfg.PrefetchCron, cfg.PrefetchWorkers, logger)
	} else {
		logger.Info("Prefetch disabled")
	}

	return &types.App{
		Config: cfg,
		Source: source,
		Cache:  calendarCache,
		Allow:  allow,
		Warmer: warmer,
		Logger: logger,
	}
}
