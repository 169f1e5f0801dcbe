// Package cart implements the shopping cart: carts live in a CartStore keyed
// by a client-held uuid and hold product lines priced at the time they were added.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrisense/internal/domain/entity"
	"agrisense/internal/observability/metrics"
	"agrisense/internal/repository"
)

// Cart operation names used as metric labels.
const (
	opCreate = "create"
	opAdd    = "add"
	opRemove = "remove"
	opClear  = "clear"
)

type Service struct {
	Store    repository.CartStore
	Products repository.ProductRepository

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create saves and returns a new empty cart.
func (s *Service) Create(ctx context.Context) (*entity.Cart, error) {
	c := &entity.Cart{ID: uuid.NewString(), Items: []entity.CartItem{}, UpdatedAt: s.now()}
	if err := s.Store.Save(ctx, c); err != nil {
		metrics.RecordCartOperation(opCreate, "error")
		return nil, fmt.Errorf("save cart: %w", err)
	}
	metrics.RecordCartOperation(opCreate, "success")
	return c, nil
}

// Get returns the cart for cartID.
func (s *Service) Get(ctx context.Context, cartID string) (*entity.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartNotFound
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []entity.CartItem{}
	}
	return c, nil
}

// AddItem adds qty units of productID to the cart. An empty cartID starts a
// new cart. A zero qty means 1.
func (s *Service) AddItem(ctx context.Context, cartID string, productID int64, qty int) (*entity.Cart, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, &entity.ValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	var c *entity.Cart
	if strings.TrimSpace(cartID) == "" {
		c = &entity.Cart{ID: uuid.NewString(), Items: []entity.CartItem{}}
	} else {
		var err error
		if c, err = s.Get(ctx, cartID); err != nil {
			metrics.RecordCartOperation(opAdd, resultOf(err))
			return nil, err
		}
	}

	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		metrics.RecordCartOperation(opAdd, "error")
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		metrics.RecordCartOperation(opAdd, "not_found")
		return nil, ErrProductNotFound
	}
	if p.Quantity <= 0 {
		metrics.RecordCartOperation(opAdd, "out_of_stock")
		return nil, fmt.Errorf("%s: %w", p.Name, ErrOutOfStock)
	}

	want := qty
	idx := c.Find(productID)
	if idx >= 0 {
		want += c.Items[idx].Quantity
	}
	if want > p.Quantity {
		metrics.RecordCartOperation(opAdd, "out_of_stock")
		return nil, fmt.Errorf("%s: only %d available: %w", p.Name, p.Quantity, ErrOutOfStock)
	}

	if idx >= 0 {
		c.Items[idx].Quantity = want
		c.Items[idx].Name = p.Name
		c.Items[idx].Price = p.Price
	} else {
		c.Items = append(c.Items, entity.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
		})
	}
	c.UpdatedAt = s.now()

	if err := s.Store.Save(ctx, c); err != nil {
		metrics.RecordCartOperation(opAdd, "error")
		return nil, fmt.Errorf("save cart: %w", err)
	}
	metrics.RecordCartOperation(opAdd, "success")
	slog.Debug("cart item added",
		slog.String("cart_id", c.ID),
		slog.Int64("product_id", productID),
		slog.Int("quantity", want))
	return c, nil
}

// RemoveItem deletes the line for productID. Removing a product that is not
// in the cart is a no-op.
func (s *Service) RemoveItem(ctx context.Context, cartID string, productID int64) (*entity.Cart, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	c, err := s.Get(ctx, cartID)
	if err != nil {
		metrics.RecordCartOperation(opRemove, resultOf(err))
		return nil, err
	}

	idx := c.Find(productID)
	if idx < 0 {
		return c, nil
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.UpdatedAt = s.now()

	if err := s.Store.Save(ctx, c); err != nil {
		metrics.RecordCartOperation(opRemove, "error")
		return nil, fmt.Errorf("save cart: %w", err)
	}
	metrics.RecordCartOperation(opRemove, "success")
	return c, nil
}

// Clear deletes the cart. Clearing an unknown cart is not an error.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	if err := s.Store.Delete(ctx, cartID); err != nil {
		metrics.RecordCartOperation(opClear, "error")
		return fmt.Errorf("delete cart: %w", err)
	}
	metrics.RecordCartOperation(opClear, "success")
	return nil
}

func resultOf(err error) string {
	if errors.Is(err, ErrCartNotFound) {
		return "not_found"
	}
	return "error"
}
