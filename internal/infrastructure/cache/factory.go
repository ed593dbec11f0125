package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sadsod/storefront/internal/domain/cart"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores groups the session-scoped stores used by the storefront
type Stores struct {
	Carts       cart.Store
	Idempotency shared.IdempotencyStore
	// Redis is nil when the stores are in-memory
	Redis *redis.Client
}

// Close releases the stores and the Redis client
func (s *Stores) Close() error {
	if c, ok := s.Carts.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	if s.Idempotency != nil {
		_ = s.Idempotency.Close()
	}
	if s.Redis != nil {
		return s.Redis.Close()
	}
	return nil
}

// StoreFactory creates the session stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	cartTTL               time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory; cartTTL is how long an idle cart is kept
func NewStoreFactory(cfg config.RedisConfig, cartTTL time.Duration, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		cartTTL:               cartTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient opens a Redis client and checks the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// CreateRedisStores creates Redis-backed stores on a shared client
func (f *StoreFactory) CreateRedisStores(client *redis.Client) *Stores {
	return &Stores{
		Carts:       NewRedisCartStore(client, f.cartTTL),
		Idempotency: NewRedisIdempotencyStore(client),
		Redis:       client,
	}
}

// CreateInMemoryStores creates process-local stores.
// Carts are lost on restart and not shared between instances.
func (f *StoreFactory) CreateInMemoryStores() *Stores {
	return &Stores{
		Carts:       NewInMemoryCartStore(f.cartTTL),
		Idempotency: NewInMemoryIdempotencyStore(),
	}
}

// CreateStores uses Redis when it is enabled and reachable, falling back to
// in-memory stores if allowed
func (f *StoreFactory) CreateStores(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory session stores")
		return f.CreateInMemoryStores(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis session stores", zap.String("addr", f.redisConfig.Addr()))
		return f.CreateRedisStores(client), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for session stores but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session stores. "+
		"Carts will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}
