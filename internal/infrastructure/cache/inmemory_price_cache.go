package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zarnegar/backend/internal/domain/goldprice"
	"go.uber.org/zap"
)

// Constants for in-memory price cache configuration
const (
	defaultPriceTTL             = 5 * time.Minute
	defaultPriceCleanupInterval = 1 * time.Minute
)

// InMemoryPriceCache implements goldprice.PriceCache using in-process storage.
// Reads go through the feed on miss or expiry. Entries are strictly per-karat:
// resolving one purity never warms another, even though prices are
// mathematically related; mixing them would mask per-karat staleness.
type InMemoryPriceCache struct {
	entries sync.Map // map[string]*cacheEntry[goldprice.PricePoint]
	feed    goldprice.PriceFeed
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     *T
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryPriceCacheOption is a functional option for configuring the cache
type InMemoryPriceCacheOption func(*InMemoryPriceCache)

// WithPriceTTL sets the per-entry time to live
func WithPriceTTL(ttl time.Duration) InMemoryPriceCacheOption {
	return func(c *InMemoryPriceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPriceCacheLogger sets the logger for the cache
func WithPriceCacheLogger(logger *zap.Logger) InMemoryPriceCacheOption {
	return func(c *InMemoryPriceCache) {
		c.logger = logger
	}
}

// NewInMemoryPriceCache creates a new in-memory read-through price cache
func NewInMemoryPriceCache(feed goldprice.PriceFeed, opts ...InMemoryPriceCacheOption) *InMemoryPriceCache {
	cache := &InMemoryPriceCache{
		feed:   feed,
		ttl:    defaultPriceTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// priceCacheKey generates the cache key for a karat
func (c *InMemoryPriceCache) priceCacheKey(karat int) string {
	return "goldprice:" + strconv.Itoa(karat)
}

// Get returns the cached price point for the karat, fetching through the feed
// on miss or expiry. Concurrent callers may race through an expired entry and
// fetch redundantly; the last write wins and both get a valid point.
func (c *InMemoryPriceCache) Get(ctx context.Context, karat int) (goldprice.PricePoint, error) {
	key := c.priceCacheKey(karat)

	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry[goldprice.PricePoint])
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			point := *entry.value
			point.Source = goldprice.SourceCache
			return point, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("price cache miss", zap.Int("karat", karat))

	point := c.feed.FetchCurrent(ctx, karat)
	c.entries.Store(key, &cacheEntry[goldprice.PricePoint]{
		value:     &point,
		expiresAt: time.Now().Add(c.ttl),
	})

	return point, nil
}

// Invalidate removes the single-karat entry
func (c *InMemoryPriceCache) Invalidate(ctx context.Context, karat int) error {
	c.entries.Delete(c.priceCacheKey(karat))
	return nil
}

// InvalidateAll clears every cached entry
func (c *InMemoryPriceCache) InvalidateAll(ctx context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	return nil
}

// Stats returns cache hit/miss counts for monitoring
func (c *InMemoryPriceCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop stops the background cleanup goroutine
func (c *InMemoryPriceCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryPriceCache) cleanupExpired() {
	ticker := time.NewTicker(defaultPriceCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				entry := value.(*cacheEntry[goldprice.PricePoint])
				if entry.isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryPriceCache implements PriceCache
var _ goldprice.PriceCache = (*InMemoryPriceCache)(nil)
