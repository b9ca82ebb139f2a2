package cache

import (
	"fmt"

	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	defaultEventKeyPrefix = "storefront:events:"
)

// Factory creates cache stores based on configuration
type Factory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to memory.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateResultCache creates the store backing analytics results
func (f *Factory) CreateResultCache() (Store, error) {
	prefix := f.cacheConfig.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return f.createStore(prefix)
}

// CreateEventLedger creates the idempotency store used by event handlers.
// Its keys live under their own prefix so clearing analytics results leaves it intact.
func (f *Factory) CreateEventLedger() (*EventLedger, error) {
	prefix := f.cacheConfig.EventKeyPrefix
	if prefix == "" {
		prefix = defaultEventKeyPrefix
	}
	store, err := f.createStore(prefix)
	if err != nil {
		return nil, err
	}
	return NewEventLedger(store), nil
}

func (f *Factory) createStore(keyPrefix string) (Store, error) {
	if f.cacheConfig.Backend != BackendRedis {
		return NewMemoryCache(f.cacheConfig.CleanupInterval), nil
	}

	store, err := NewRedisCache(f.redisConfig, keyPrefix)
	if err == nil {
		f.logger.Info("Using Redis cache store",
			zap.String("addr", f.redisConfig.Addr()),
			zap.String("prefix", keyPrefix),
		)
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis cache backend unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
		"Instances will not share cached results or handled event IDs.",
		zap.String("prefix", keyPrefix),
		zap.Error(err),
	)
	return NewMemoryCache(f.cacheConfig.CleanupInterval), nil
}
