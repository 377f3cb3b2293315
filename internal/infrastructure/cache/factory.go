package cache

import (
	"time"

	"github.com/zarnegar/backend/internal/domain/goldprice"
	"github.com/zarnegar/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PriceCacheFactory creates price caches based on configuration
type PriceCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// PriceCacheFactoryOption is a functional option for configuring the factory
type PriceCacheFactoryOption func(*PriceCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PriceCacheFactoryOption {
	return func(f *PriceCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-process cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) PriceCacheFactoryOption {
	return func(f *PriceCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewPriceCacheFactory creates a new factory
func NewPriceCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...PriceCacheFactoryOption) *PriceCacheFactory {
	f := &PriceCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates a price cache backed by Redis when it is reachable.
// A single-instance deployment without Redis gets the in-process cache; the
// difference only matters when several instances should price off the same
// quote within a TTL window.
func (f *PriceCacheFactory) CreateCache(feed goldprice.PriceFeed) (goldprice.PriceCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	redisCache, err := NewRedisPriceCache(redisCfg, feed, f.ttl, f.logger)
	if err == nil {
		f.logger.Info("using Redis price cache",
			zap.String("host", f.redisConfig.Host),
			zap.Duration("ttl", f.ttl))
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, using in-memory price cache",
		zap.Error(err))
	return NewInMemoryPriceCache(feed,
		WithPriceTTL(f.ttl),
		WithPriceCacheLogger(f.logger),
	), nil
}
