package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache keeps entries in Redis so several server instances share them.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache connects lazily to the Redis server at addr.
func NewRedisCache(addr string, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return NewRedisCacheWithOptions(&redis.Options{Addr: addr}, ttl, logger)
}

// NewRedisCacheWithOptions is NewRedisCache with full client options.
func NewRedisCacheWithOptions(opts *redis.Options, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached value for key. Connection errors are logged and
// reported as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis get failed",
				zap.String("op", "cache.RedisCache.Get"),
				zap.Error(err),
			)
		}
		return "", false
	}
	return val, true
}

// Set stores value under key with the configured TTL.
func (r *RedisCache) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Ping checks that the server is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
