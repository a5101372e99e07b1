package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lifestream-app/lifestream/internal/biz/repo"
)

// redisStateRepo stores blobs as plain Redis string values
type redisStateRepo struct {
	client *redis.Client
}

// NewRedisStateRepo connects to Redis and verifies the connection
func NewRedisStateRepo(ctx context.Context, addr, password string, db int) (repo.StateRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &redisStateRepo{client: client}, nil
}

// Save sets key without expiry
func (r *redisStateRepo) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Load returns the value under key, or nil when missing
func (r *redisStateRepo) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}

// Close closes the client
func (r *redisStateRepo) Close() error {
	return r.client.Close()
}
