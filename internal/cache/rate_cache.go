package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/sadad_api/pkg/sadad"
)

// store is the subset of RedisClient the rate cache needs.
type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RateCache keeps the Sadad currency list in Redis so every API replica shares one
// copy. It implements sadad.RateCache.
type RateCache struct {
	redis store
	ttl   time.Duration
}

var _ sadad.RateCache = (*RateCache)(nil)

// NewRateCache creates a RateCache. Entries expire after ttl.
func NewRateCache(redis *RedisClient, ttl time.Duration) *RateCache {
	return &RateCache{redis: redis, ttl: ttl}
}

// keyForMode returns the Redis key holding the currency list of one gateway mode.
func (c *RateCache) keyForMode(sandbox bool) string {
	mode := "live"
	if sandbox {
		mode = "sandbox"
	}
	return fmt.Sprintf("sadad:rates:%s", mode)
}

// Load returns the cached list. A missing key is a miss, not an error.
func (c *RateCache) Load(ctx context.Context, sandbox bool) ([]sadad.CurrencyRate, bool, error) {
	raw, err := c.redis.Get(ctx, c.keyForMode(sandbox))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rates []sadad.CurrencyRate
	if err := json.Unmarshal([]byte(raw), &rates); err != nil {
		return nil, false, fmt.Errorf("decode cached rates: %w", err)
	}
	return rates, true, nil
}

// Store writes the list with the configured TTL.
func (c *RateCache) Store(ctx context.Context, sandbox bool, rates []sadad.CurrencyRate) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, c.keyForMode(sandbox), string(data), c.ttl)
}

// Invalidate drops the cached list so the next lookup fetches from the gateway.
func (c *RateCache) Invalidate(ctx context.Context, sandbox bool) error {
	return c.redis.Delete(ctx, c.keyForMode(sandbox))
}
