package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/styleswipe/pkg/logger"
)

// Cache stores raw search responses
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache on go-redis
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedClient serves repeated queries from the cache. Cache failures
// are logged and the query goes to the wrapped client.
type CachedClient struct {
	next  ShoppingClient
	cache Cache
	ttl   time.Duration
}

func NewCachedClient(next ShoppingClient, cache Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, cache: cache, ttl: ttl}
}

func (c *CachedClient) Search(ctx context.Context, query string, num int) ([]Result, error) {
	key := cacheKey(query, num)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Search cache read failed")
	} else if ok {
		var results []Result
		if err := json.Unmarshal(raw, &results); err == nil {
			logger.Debug(ctx).Str("cache_key", key).Msg("Search cache hit")
			return results, nil
		}
	}

	results, err := c.next.Search(ctx, query, num)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(results)
	if err == nil {
		err = c.cache.Set(ctx, key, raw, c.ttl)
	}
	if err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to cache search results")
	}
	return results, nil
}

func cacheKey(query string, num int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", query, num)))
	return "search:" + hex.EncodeToString(hash[:])
}
