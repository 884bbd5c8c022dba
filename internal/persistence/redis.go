package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/store-management/internal/config"
)

// Redis wraps the go-redis client. It backs the product read cache and the
// audit trail; both degrade gracefully when redis is unreachable.
type Redis struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, logger: logger}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Get fetches a cached value. A miss or transport error both report absent.
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	if r == nil || r.Client == nil {
		return "", false
	}
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a value with a TTL. Failures are logged, never propagated.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if r == nil || r.Client == nil {
		return
	}
	if err := r.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Debug("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes a key.
func (r *Redis) Delete(ctx context.Context, key string) {
	if r == nil || r.Client == nil {
		return
	}
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		r.logger.Debug("redis del failed", zap.String("key", key), zap.Error(err))
	}
}

// AppendCapped pushes a value onto a list and trims it to max entries.
func (r *Redis) AppendCapped(ctx context.Context, key, value string, max int64) {
	if r == nil || r.Client == nil {
		return
	}
	pipe := r.Client.Pipeline()
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, max-1)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Debug("redis append failed", zap.String("key", key), zap.Error(err))
	}
}
