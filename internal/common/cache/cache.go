// internal/common/cache/cache.go
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-screener/internal/common/config"
	"resume-screener/internal/common/metrics"
	"resume-screener/internal/models"
)

// ResultCache memoizes combined comparison results in redis. It is a pure
// optimization: every method degrades to a miss on any failure, so callers
// never depend on it for correctness.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a redis-backed cache from config.
func NewResultCache(cfg config.CacheConfig) (*ResultCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &ResultCache{
		client: rdb,
		ttl:    config.GetDuration(cfg.TTL),
	}, nil
}

// NewResultCacheWithClient wraps an existing client (tests, shared pools).
func NewResultCacheWithClient(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Ping tests the redis connection.
func (c *ResultCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func (c *ResultCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Key derives the cache key from both documents and the weight configuration.
// Different weights must never collide.
func Key(jobText, resumeText string, w models.Weights) string {
	h := sha1.New()
	fmt.Fprintf(h, "%.6f|%.6f|", w.Lexical, w.Semantic)
	h.Write([]byte(jobText))
	h.Write([]byte{0})
	h.Write([]byte(resumeText))
	return "screener:result:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for a key, or (nil, nil) on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*models.CombinedResult, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheRequests.WithLabelValues("miss").Inc()
			return nil, nil
		}
		metrics.CacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var result models.CombinedResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cache entry corrupt: %w", err)
	}

	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return &result, nil
}

// Set stores a result under the key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, result *models.CombinedResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}
