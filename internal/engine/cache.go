package engine

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// resultCache holds extraction results in two tiers: an in-process
// expirable LRU (L1) and Redis (L2, optional, survives restarts).
// nil until InitCache.
var resultCache *tieredCache

// DefaultCacheTTL is used when InitCache is given a non-positive ttl.
const DefaultCacheTTL = 15 * time.Minute

var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type tieredCache struct {
	l1  *expirable.LRU[string, []byte]
	rdb *redis.Client // nil when L2 is disabled
	ttl time.Duration
}

// InitCache sets up the cache. Call after Init(). maxEntries 0 leaves L1
// unbounded. An empty redisURL, an invalid one or an unreachable server
// leaves L2 disabled.
func InitCache(redisURL string, ttl time.Duration, maxEntries int) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &tieredCache{
		l1:  expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
		ttl: ttl,
	}
	if redisURL != "" {
		c.rdb = connectRedis(redisURL)
	}
	resultCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))
}

func connectRedis(redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		return nil
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
		_ = rdb.Close()
		return nil
	}
	slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
	return rdb
}

// CacheKey builds a deterministic cache key from parts. Each part is hashed
// with its length, so no two distinct part lists share a key.
func CacheKey(parts ...string) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return fmt.Sprintf("gp:%x", h.Sum(nil)[:12])
}

// CacheGet tries L1, then L2. An L2 hit is copied into L1.
func CacheGet(ctx context.Context, key string) ([]byte, bool) {
	c := resultCache
	if c == nil {
		cacheMisses.Add(1)
		return nil, false
	}
	if data, ok := c.l1.Get(key); ok {
		cacheHits.Add(1)
		return data, true
	}
	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			slog.Debug("cache: L2 hit", slog.String("key", key))
			c.l1.Add(key, data)
			cacheHits.Add(1)
			return data, true
		case !errors.Is(err, redis.Nil):
			slog.Debug("cache: L2 get failed", slog.Any("error", err))
		}
	}
	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores data in both tiers.
func CacheSet(ctx context.Context, key string, data []byte) {
	c := resultCache
	if c == nil {
		return
	}
	c.l1.Add(key, data)
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}
