package repository

import (
	"context"
	"errors"

	"agrisense/internal/domain/entity"
)

// ErrCartNotFound is returned by CartStore.Get when no cart exists for the ID
// or the cart has expired.
var ErrCartNotFound = errors.New("cart not found")

// CartStore keeps carts keyed by their ID. Save replaces the stored cart and
// refreshes its expiry.
type CartStore interface {
	Get(ctx context.Context, id string) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	Delete(ctx context.Context, id string) error
}
