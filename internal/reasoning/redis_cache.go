package reasoning

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/config"
)

const defaultKeyPrefix = "matchday:reasoning:"

// RedisCache shares completions across processes. Redis owns expiry.
type RedisCache struct {
	hitStats
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisCache connects to redis and verifies connectivity with a ping
func NewRedisCache(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, logger *logrus.Logger) (*RedisCache, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return NewRedisCacheFromClient(rdb, cfg.KeyPrefix, ttl, logger), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(rdb redis.UniversalClient, prefix string, ttl time.Duration, logger *logrus.Logger) *RedisCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl, logger: logger}
}

// Get retrieves a cached completion. Redis errors count as misses.
func (rc *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := rc.rdb.Get(ctx, rc.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rc.logger.WithError(err).Warn("Redis cache read failed")
		}
		rc.record(false)
		return "", false
	}
	rc.record(true)
	return v, true
}

// Set stores a completion with the configured TTL
func (rc *RedisCache) Set(ctx context.Context, key, value string) {
	if err := rc.rdb.Set(ctx, rc.prefix+key, value, rc.ttl).Err(); err != nil {
		rc.logger.WithError(err).Warn("Redis cache write failed")
	}
}

// Delete evicts one completion
func (rc *RedisCache) Delete(ctx context.Context, key string) {
	if err := rc.rdb.Del(ctx, rc.prefix+key).Err(); err != nil {
		rc.logger.WithError(err).Warn("Redis cache delete failed")
	}
}

// Ping checks the Redis connection
func (rc *RedisCache) Ping(ctx context.Context) error {
	if err := rc.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.rdb.Close()
}
