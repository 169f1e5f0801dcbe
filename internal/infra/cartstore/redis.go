package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"agrisense/internal/domain/entity"
)

// Redis stores carts as JSON under cart:<id>.
type Redis struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedis returns a Redis store. A non-positive ttl uses DefaultTTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, baseTTL: ttl}
}

func (r *Redis) Get(ctx context.Context, id string) (*entity.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart entity.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

func (r *Redis) Save(ctx context.Context, cart *entity.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(cart.ID), data, ttlWithJitter(r.baseTTL)).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, cartKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Ping checks connectivity; used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
