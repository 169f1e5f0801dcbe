// Package bill turns carts into persisted invoices.
package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/observability/metrics"
	"agrisense/internal/repository"
)

// Notifier receives checkout events. Implementations must not block the caller.
type Notifier interface {
	NotifyBill(ctx context.Context, bill *entity.BillReport) error
	NotifyLowStock(ctx context.Context, products []entity.Product) error
}

type Service struct {
	Repo     repository.BillRepository
	Products repository.ProductRepository
	Carts    repository.CartStore

	// Notifier is optional.
	Notifier Notifier

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Checkout bills the cart at current catalog prices, takes the quantities out
// of stock and deletes the cart.
func (s *Service) Checkout(ctx context.Context, cartID, customerName string) (*entity.BillReport, error) {
	cart, err := s.Carts.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			metrics.RecordCheckout("not_found", 0)
			return nil, ErrCartNotFound
		}
		metrics.RecordCheckout(metrics.OutcomeFailure, 0)
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		metrics.RecordCheckout("empty", 0)
		return nil, ErrEmptyCart
	}

	items := make([]entity.BillItem, 0, len(cart.Items))
	remaining := make([]entity.Product, 0, len(cart.Items))
	for _, line := range cart.Items {
		p, err := s.Products.Get(ctx, line.ProductID)
		if err != nil {
			metrics.RecordCheckout(metrics.OutcomeFailure, 0)
			return nil, fmt.Errorf("load product %d: %w", line.ProductID, err)
		}
		if p == nil {
			metrics.RecordCheckout("insufficient_stock", 0)
			return nil, fmt.Errorf("%s is no longer available: %w", line.Name, ErrInsufficientStock)
		}
		items = append(items, entity.BillItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
		after := *p
		after.Quantity -= line.Quantity
		remaining = append(remaining, after)
	}

	bill := entity.NewBillReport(customerName, items, s.now())
	if err := s.Repo.Create(ctx, bill); err != nil {
		if errors.Is(err, entity.ErrInsufficientStock) {
			metrics.RecordCheckout("insufficient_stock", 0)
			return nil, fmt.Errorf("checkout: %w", err)
		}
		metrics.RecordCheckout(metrics.OutcomeFailure, 0)
		return nil, fmt.Errorf("create bill: %w", err)
	}
	metrics.RecordCheckout(metrics.OutcomeSuccess, bill.Total)

	if err := s.Carts.Delete(ctx, cart.ID); err != nil {
		// 請求書は作成済みなので失敗にはしない
		slog.Warn("failed to clear cart after checkout",
			slog.String("cart_id", cart.ID),
			slog.Int64("bill_id", bill.ID),
			slog.Any("error", err))
	}

	slog.Info("checkout completed",
		slog.Int64("bill_id", bill.ID),
		slog.Int("lines", len(bill.Items)),
		slog.Float64("total", bill.Total))

	s.notify(ctx, bill, remaining)
	return bill, nil
}

func (s *Service) notify(ctx context.Context, bill *entity.BillReport, after []entity.Product) {
	if s.Notifier == nil {
		return
	}
	_ = s.Notifier.NotifyBill(ctx, bill)

	var low []entity.Product
	for _, p := range after {
		if p.LowStock() {
			low = append(low, p)
		}
	}
	if len(low) > 0 {
		_ = s.Notifier.NotifyLowStock(ctx, low)
	}
}

func (s *Service) List(ctx context.Context) ([]*entity.BillReport, error) {
	bills, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.BillReport, error) {
	if id <= 0 {
		return nil, ErrInvalidBillID
	}
	b, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	if b == nil {
		return nil, ErrBillNotFound
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidBillID
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrBillNotFound
		}
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}

// TotalSales returns the sum of all bill totals.
func (s *Service) TotalSales(ctx context.Context) (float64, error) {
	total, err := s.Repo.TotalSales(ctx)
	if err != nil {
		return 0, fmt.Errorf("total sales: %w", err)
	}
	return total, nil
}
