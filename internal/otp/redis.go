package otp

import (
	"context"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
)

// RedisStore implements Store on Redis, relying on key expiry for TTL
// eviction. Keys are namespaced so the store can share an instance with
// other consumers.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func key(phone string) string {
	return "otp:" + phone
}

func (s *RedisStore) Set(ctx context.Context, phone, hashedCode string, ttl time.Duration) error {
	return s.client.Set(ctx, key(phone), hashedCode, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, phone string) (string, error) {
	val, err := s.client.Get(ctx, key(phone)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, key(phone)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
