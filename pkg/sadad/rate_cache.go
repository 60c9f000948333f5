package sadad

import (
	"context"
	"sync"
	"time"
)

// RateCache stores currency lists per mode. Load reports ok=false on a miss or an
// expired entry.
type RateCache interface {
	Load(ctx context.Context, sandbox bool) (rates []CurrencyRate, ok bool, err error)
	Store(ctx context.Context, sandbox bool, rates []CurrencyRate) error
}

type cachedRates struct {
	rates     []CurrencyRate
	expiresAt time.Time
}

// MemoryRateCache is an in-process RateCache with a fixed TTL.
type MemoryRateCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[bool]cachedRates
}

// NewMemoryRateCache creates a MemoryRateCache. Entries expire after ttl.
func NewMemoryRateCache(ttl time.Duration) *MemoryRateCache {
	return &MemoryRateCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[bool]cachedRates),
	}
}

// Load implements RateCache.
func (c *MemoryRateCache) Load(_ context.Context, sandbox bool) ([]CurrencyRate, bool, error) {
	c.mu.RLock()
	entry, found := c.entries[sandbox]
	c.mu.RUnlock()

	if !found || !c.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	return append([]CurrencyRate(nil), entry.rates...), true, nil
}

// Store implements RateCache.
func (c *MemoryRateCache) Store(_ context.Context, sandbox bool, rates []CurrencyRate) error {
	c.mu.Lock()
	c.entries[sandbox] = cachedRates{
		rates:     append([]CurrencyRate(nil), rates...),
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}
