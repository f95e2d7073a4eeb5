package sentiment

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"sentiment-scoop/internal/shared/telemetry"
)

// Cache is a two-tier read cache in front of the repo: L1 in-memory, optional
// L2 Redis. L1 is lost on restart; L2 survives it.
type Cache struct {
	mu  sync.RWMutex
	l1  map[string]cacheEntry
	rdb *redis.Client
	ttl time.Duration
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewCache builds the cache. redisURL may be empty to disable L2; an
// unreachable Redis also just disables L2.
func NewCache(redisURL string, ttl time.Duration) *Cache {
	c := &Cache{l1: make(map[string]cacheEntry), ttl: ttl}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			telemetry.Warn("cache.redis_url_invalid", map[string]any{"error": err.Error()})
			return c
		}
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			telemetry.Warn("cache.redis_unreachable", map[string]any{"error": err.Error()})
			return c
		}
		c.rdb = rdb
		telemetry.Info("cache.redis_connected", map[string]any{"addr": opts.Addr})
	}
	return c
}

func cacheKey(videoID string) string { return "sentiment:" + videoID }

// Get tries L1, then L2. An L2 hit repopulates L1.
func (c *Cache) Get(ctx context.Context, videoID string) (Analysis, bool) {
	if c == nil {
		return Analysis{}, false
	}
	key := cacheKey(videoID)

	c.mu.RLock()
	entry, ok := c.l1[key]
	c.mu.RUnlock()
	if ok {
		if time.Now().Before(entry.expiresAt) {
			var analysis Analysis
			if json.Unmarshal(entry.data, &analysis) == nil {
				return analysis, true
			}
		}
		c.mu.Lock()
		delete(c.l1, key)
		c.mu.Unlock()
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var analysis Analysis
			if json.Unmarshal(data, &analysis) == nil {
				c.mu.Lock()
				c.l1[key] = cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
				c.mu.Unlock()
				return analysis, true
			}
		}
	}

	return Analysis{}, false
}

// Set stores the analysis in both tiers.
func (c *Cache) Set(ctx context.Context, analysis Analysis) {
	if c == nil {
		return
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	key := cacheKey(analysis.VideoID)

	c.mu.Lock()
	c.l1[key] = cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			telemetry.Warn("cache.redis_set_failed", map[string]any{"error": err.Error()})
		}
	}
}

// Delete drops one video from both tiers.
func (c *Cache) Delete(ctx context.Context, videoID string) {
	if c == nil {
		return
	}
	key := cacheKey(videoID)
	c.mu.Lock()
	delete(c.l1, key)
	c.mu.Unlock()
	if c.rdb != nil {
		c.rdb.Del(ctx, key)
	}
}

// PruneExpired drops expired L1 entries. Redis expires its own keys.
func (c *Cache) PruneExpired() {
	if c == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.l1 {
		if now.After(entry.expiresAt) {
			delete(c.l1, key)
		}
	}
	c.mu.Unlock()
}
