package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zarnegar/backend/internal/domain/goldprice"
	"go.uber.org/zap"
)

// RedisPriceCache implements goldprice.PriceCache on Redis so that every
// back-office instance prices payments off the same quote within the TTL
// window. Reads go through the feed on miss; a Redis outage degrades to a
// direct feed fetch instead of failing the read.
type RedisPriceCache struct {
	client    *redis.Client
	feed      goldprice.PriceFeed
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisPriceCache creates a new Redis-backed price cache
func NewRedisPriceCache(cfg RedisConfig, feed goldprice.PriceFeed, ttl time.Duration, logger *zap.Logger) (*RedisPriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultPriceTTL
	}

	return &RedisPriceCache{
		client:    client,
		feed:      feed,
		ttl:       ttl,
		keyPrefix: "goldprice:karat:",
		logger:    logger,
	}, nil
}

// NewRedisPriceCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisPriceCacheWithClient(client *redis.Client, feed goldprice.PriceFeed, ttl time.Duration, logger *zap.Logger) *RedisPriceCache {
	if ttl <= 0 {
		ttl = defaultPriceTTL
	}
	return &RedisPriceCache{
		client:    client,
		feed:      feed,
		ttl:       ttl,
		keyPrefix: "goldprice:karat:",
		logger:    logger,
	}
}

func (c *RedisPriceCache) key(karat int) string {
	return c.keyPrefix + strconv.Itoa(karat)
}

// Get returns the cached point for the karat, fetching through the feed on
// miss or expiry
func (c *RedisPriceCache) Get(ctx context.Context, karat int) (goldprice.PricePoint, error) {
	data, err := c.client.Get(ctx, c.key(karat)).Bytes()
	if err == nil {
		var point goldprice.PricePoint
		if unmarshalErr := json.Unmarshal(data, &point); unmarshalErr == nil {
			point.Source = goldprice.SourceCache
			return point, nil
		}
		// Corrupt entry: fall through to a fresh fetch and overwrite it
		c.logger.Warn("discarding corrupt price cache entry", zap.Int("karat", karat))
	} else if err != redis.Nil {
		// Redis outage degrades to a direct fetch; pricing must stay available
		c.logger.Warn("price cache read failed, fetching directly",
			zap.Int("karat", karat),
			zap.Error(err))
		return c.feed.FetchCurrent(ctx, karat), nil
	}

	point := c.feed.FetchCurrent(ctx, karat)

	payload, err := json.Marshal(point)
	if err != nil {
		return point, nil
	}
	if err := c.client.Set(ctx, c.key(karat), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to populate price cache",
			zap.Int("karat", karat),
			zap.Error(err))
	}

	return point, nil
}

// Invalidate removes the single-karat entry
func (c *RedisPriceCache) Invalidate(ctx context.Context, karat int) error {
	if err := c.client.Del(ctx, c.key(karat)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate price cache entry: %w", err)
	}
	return nil
}

// InvalidateAll clears every cached price entry
func (c *RedisPriceCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate price cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan price cache keys: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}

// Ensure RedisPriceCache implements PriceCache
var _ goldprice.PriceCache = (*RedisPriceCache)(nil)
