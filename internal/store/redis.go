package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/logging"
)

const redisKeyPrefix = "chatwidget:"

// RedisKV implements KV on Redis, for deployments where the widget engine
// runs server-side and tracks many visitors.
type RedisKV struct {
	client    *redis.Client
	namespace string
	log       *logging.Logger
}

// NewRedisKV connects to Redis using the configured address.
func NewRedisKV(cfg config.StateConfig, log *logging.Logger) (*RedisKV, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis state store requires state.redisAddr")
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	return &RedisKV{
		client:    client,
		namespace: cfg.Namespace,
		log:       log.Sub("store"),
	}, nil
}

func (r *RedisKV) key(k string) string {
	if r.namespace == "" {
		return redisKeyPrefix + k
	}
	return redisKeyPrefix + r.namespace + ":" + k
}

// Get returns the value for key, with found=false when absent. Client state
// carries no TTL: the server side owns expiry policy.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes key=value.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
