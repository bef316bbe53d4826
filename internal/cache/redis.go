package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	key := cacheKey(id)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var item domain.Item
	if err2 := json.Unmarshal(data, &item); err2 != nil {
		return nil, fmt.Errorf("unmarshal item failed: %w", err2)
	}

	return &item, nil
}

func (r *RedisCache) Set(ctx context.Context, item *domain.Item) error {
	key := cacheKey(item.ID)
	jsonItem, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item failed: %w", err)
	}

	// Jitter spreads expirations so hot items do not all miss at once
	jitter := time.Duration(rand.Intn(60)) * time.Second
	ttl := r.baseTTL + jitter
	if ret := r.client.Set(ctx, key, jsonItem, ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, id uuid.UUID) error {
	if ret := r.client.Del(ctx, cacheKey(id)); ret.Err() != nil {
		return fmt.Errorf("redis del failed: %w", ret.Err())
	}
	return nil
}

func cacheKey(id uuid.UUID) string {
	return "item:" + id.String()
}
