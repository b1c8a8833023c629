package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"email-catalog-go/internal/metrics"
	"email-catalog-go/internal/service"
)

const keyPrefix = "search:"

// SearchCache stores search result pages in Redis. Concurrent identical
// queries are collapsed with singleflight so the database sees one of them.
type SearchCache struct {
	client  *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
}

// New creates a search cache backed by the given Redis client
func New(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *SearchCache {
	return &SearchCache{client: client, ttl: ttl, metrics: m}
}

// Get returns the cached result for the key, if present.
func (c *SearchCache) Get(ctx context.Context, key string) (*service.SearchResult, bool) {
	data, err := c.client.Get(ctx, c.buildKey(key)).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.Errorf("Search cache get failed: %v", err)
		}
		c.miss()
		return nil, false
	}

	var result service.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		logrus.Errorf("Search cache unmarshal failed: %v", err)
		c.miss()
		return nil, false
	}

	c.hit()
	return &result, true
}

// Set stores the result under the key with the configured TTL. Failures
// are logged and swallowed; the cache is best-effort.
func (c *SearchCache) Set(ctx context.Context, key string, result *service.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		logrus.Errorf("Search cache marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, c.buildKey(key), data, c.ttl).Err(); err != nil {
		logrus.Errorf("Search cache set failed: %v", err)
	}
}

// GetOrCompute returns the cached result for the key or computes and
// stores it. The second return reports whether the result came from cache.
func (c *SearchCache) GetOrCompute(ctx context.Context, key string, compute func() (*service.SearchResult, error)) (*service.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}

	val, err, _ := c.group.Do(c.buildKey(key), func() (interface{}, error) {
		if result, ok := c.Get(ctx, key); ok {
			return result, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*service.SearchResult), false, nil
}

// Invalidate drops every cached search page. Called after a bulk ingest
// commits new emails.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan search cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete search cache keys: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if deleted > 0 {
		logrus.WithField("keys_deleted", deleted).Info("Search cache invalidated")
	}
	return nil
}

func (c *SearchCache) buildKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func (c *SearchCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *SearchCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}
