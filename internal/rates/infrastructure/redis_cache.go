package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/rates/domain"
	"github.com/redis/go-redis/v9"
)

// rateCacheKey holds the cached rate table.
const rateCacheKey = "subtrack:rates:table"

// ErrCacheMiss is returned when no cached table exists.
var ErrCacheMiss = errors.New("rates cache miss")

// RedisCache stores fetched rate tables in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new RedisCache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get loads the cached rate table.
func (c *RedisCache) Get(ctx context.Context) (domain.Table, error) {
	payload, err := c.client.Get(ctx, rateCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Table{}, ErrCacheMiss
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("read rates cache: %w", err)
	}

	var table domain.Table
	if err := json.Unmarshal(payload, &table); err != nil {
		return domain.Table{}, fmt.Errorf("decode cached rates: %w", err)
	}
	return table, nil
}

// Set stores a rate table.
func (c *RedisCache) Set(ctx context.Context, table domain.Table) error {
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	if err := c.client.Set(ctx, rateCacheKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("write rates cache: %w", err)
	}
	return nil
}
