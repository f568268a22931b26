package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"ponselpos/backend/internal/domain"
)

type RedisLedgerCache struct {
	client *redis.Client
}

func NewRedisLedgerCache(addr string, password string, db int) *RedisLedgerCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisLedgerCache{client: client}
}

func (c *RedisLedgerCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisLedgerCache) Close() error {
	return c.client.Close()
}

func (c *RedisLedgerCache) Get(ctx context.Context, key string) (*domain.LedgerResponse, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resp domain.LedgerResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (c *RedisLedgerCache) Set(ctx context.Context, key string, value *domain.LedgerResponse, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisLedgerCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
