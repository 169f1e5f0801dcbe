package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"agrisense/internal/domain/entity"
)

// Memory keeps carts in process. Carts are stored as JSON so callers never
// share slices with the store.
type Memory struct {
	cache   *cache.Cache
	baseTTL time.Duration
}

// NewMemory returns an in-memory store. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{cache: cache.New(ttl, 10*time.Minute), baseTTL: ttl}
}

func (m *Memory) Get(_ context.Context, id string) (*entity.Cart, error) {
	v, ok := m.cache.Get(cartKey(id))
	if !ok {
		return nil, ErrCartNotFound
	}
	var cart entity.Cart
	if err := json.Unmarshal(v.([]byte), &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

func (m *Memory) Save(_ context.Context, cart *entity.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	m.cache.Set(cartKey(cart.ID), data, ttlWithJitter(m.baseTTL))
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.cache.Delete(cartKey(id))
	return nil
}

// Len returns the number of live carts.
func (m *Memory) Len() int {
	return m.cache.ItemCount()
}
