// Package cache provides the club external-id resolution cache: a
// Redis-backed store that survives worker restarts, with an in-memory
// fallback used whenever Redis is unreachable.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"clubarchive/ingestion/internal/metrics"
)

// entryTTL bounds how long a resolved club id is trusted before the
// upstream is asked to re-resolve it.
const entryTTL = 24 * time.Hour

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// ClubCache caches the (name, platform) -> external club id mapping;
// the upstream client does the resolving.
// When Redis is unavailable at construction time, it degrades to an
// in-process map for the lifetime of the worker.
type ClubCache struct {
	rdb *redis.Client

	memMu sync.RWMutex
	mem   map[string]string
}

// NewClubCache connects to Redis. On failure it returns a cache backed
// only by an in-memory map, and a non-nil error the caller may log as a
// warning without treating as fatal.
func NewClubCache(ctx context.Context, cfg Config) (*ClubCache, error) {
	c := &ClubCache{mem: make(map[string]string)}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return c, fmt.Errorf("redis unreachable, falling back to in-memory cache: %w", err)
	}

	c.rdb = rdb
	return c, nil
}

// NewMemoryOnly builds a cache with no Redis backing at all. Used by
// tests and by any caller that has deliberately opted out of the
// Redis-backed cache.
func NewMemoryOnly() *ClubCache {
	return &ClubCache{mem: make(map[string]string)}
}

// Close releases the Redis connection, if any.
func (c *ClubCache) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

func key(name, platform string) string {
	return fmt.Sprintf("club-external-id:%s:%s", platform, name)
}

// Get returns a cached external club id, if present.
func (c *ClubCache) Get(ctx context.Context, name, platform string) (string, bool) {
	k := key(name, platform)

	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, k).Result()
		if err == nil {
			metrics.RecordCacheHit()
			return val, true
		}
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", k).Msg("club cache read failed, falling back to in-memory")
		}
	}

	c.memMu.RLock()
	v, ok := c.mem[k]
	c.memMu.RUnlock()

	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return v, ok
}

// Set stores a resolved external club id.
func (c *ClubCache) Set(ctx context.Context, name, platform, externalID string) {
	k := key(name, platform)

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, k, externalID, entryTTL).Err(); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("club cache write failed, falling back to in-memory")
		} else {
			return
		}
	}

	c.memMu.Lock()
	c.mem[k] = externalID
	c.memMu.Unlock()
}
