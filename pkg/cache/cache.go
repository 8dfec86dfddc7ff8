// Package cache holds fetched contribution calendars so repeated badge and
// JSON requests for the same user do not hammer the upstream provider.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/streakforge/streakd/pkg/redis"
	"github.com/streakforge/streakd/pkg/streak"
)

const keyPrefix = "streakd:calendar:"

type entry struct {
	Days    []streak.Day
	Expires time.Time
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Redis   bool  `json:"redis"`
}

// Cache is a two-tier calendar cache: an in-process map always, Redis as an
// optional shared tier. Redis failures degrade silently to the memory tier.
type Cache struct {
	ttl    time.Duration
	mem    *xsync.Map[string, entry]
	redis  *redis.Client
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64

	// now is swappable for expiry tests.
	now func() time.Time
}

// New creates a Cache with the given TTL. rdb may be nil.
func New(ttl time.Duration, rdb *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{
		ttl:    ttl,
		mem:    xsync.NewMap[string, entry](),
		redis:  rdb,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the cached calendar for username, checking the memory tier
// first and falling back to Redis.
func (c *Cache) Get(ctx context.Context, username string) ([]streak.Day, bool) {
	key := strings.ToLower(username)

	if e, ok := c.mem.Load(key); ok {
		if c.now().Before(e.Expires) {
			c.hits.Add(1)
			return e.Days, true
		}
		c.mem.Delete(key)
	}

	if c.redis != nil {
		if data, ok := c.redis.Get(ctx, keyPrefix+key); ok {
			var days []streak.Day
			if err := json.Unmarshal(data, &days); err != nil {
				c.logger.Warn("Discarding undecodable cached calendar",
					zap.String("username", key), zap.Error(err))
			} else {
				// Promote into the memory tier for the remainder of the TTL.
				c.mem.Store(key, entry{Days: days, Expires: c.now().Add(c.ttl)})
				c.hits.Add(1)
				return days, true
			}
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Set stores the calendar for username in both tiers.
func (c *Cache) Set(ctx context.Context, username string, days []streak.Day) {
	key := strings.ToLower(username)
	c.mem.Store(key, entry{Days: days, Expires: c.now().Add(c.ttl)})

	if c.redis != nil {
		data, err := json.Marshal(days)
		if err != nil {
			c.logger.Warn("Unable to encode calendar for Redis",
				zap.String("username", key), zap.Error(err))
			return
		}
		c.redis.Set(ctx, keyPrefix+key, data, c.ttl)
	}
}

// Stats reports entry count and hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.mem.Size(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Redis:   c.redis != nil,
	}
}

// Health pings the Redis tier when present.
func (c *Cache) Health(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Health(ctx)
}

// Close releases the Redis tier when present.
func (c *Cache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
