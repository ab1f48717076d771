package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps the blob under one Redis key
type RedisBackend struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewRedisBackend connects to redisURL and pings it
func NewRedisBackend(redisURL, key string, timeout time.Duration) (*RedisBackend, error) {
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	b := &RedisBackend{client: redis.NewClient(opt), key: key, timeout: timeout}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := b.client.Ping(ctx).Err(); err != nil {
		_ = b.client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return b, nil
}

func (b *RedisBackend) Read() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.key, err)
	}
	return data, nil
}

func (b *RedisBackend) Write(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.key, err)
	}
	return nil
}

// Close closes the client
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
