// Package dashboard aggregates the admin overview numbers.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"agrisense/internal/domain/entity"
	"agrisense/internal/observability/metrics"
	"agrisense/internal/repository"
)

// previewSize is how many products the inventory overview shows.
const previewSize = 4

// Stats is the dashboard payload.
type Stats struct {
	Products   int64
	Machinery  int64
	Videos     int64
	Users      int64
	Invoices   int64
	TotalSales float64
	LowStock   int
	Inventory  []InventoryItem
}

// InventoryItem is one row of the inventory overview.
type InventoryItem struct {
	ID       int64
	Name     string
	Category string
	Quantity int
	Status   string
}

type Service struct {
	Products  repository.ProductRepository
	Machinery repository.MachineryRepository
	Videos    repository.VideoRepository
	Users     repository.UserRepository
	Bills     repository.BillRepository
}

// Stats runs every query concurrently and fails if any of them fails.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	var preview, low []*entity.Product

	eg, egCtx := errgroup.WithContext(ctx)
	count := func(dst *int64, name string, fn func(context.Context) (int64, error)) {
		eg.Go(func() error {
			n, err := fn(egCtx)
			if err != nil {
				return fmt.Errorf("count %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}
	count(&st.Products, "products", s.Products.Count)
	count(&st.Machinery, "machinery", s.Machinery.Count)
	count(&st.Videos, "videos", s.Videos.Count)
	count(&st.Users, "users", s.Users.Count)
	count(&st.Invoices, "bills", s.Bills.Count)

	eg.Go(func() error {
		total, err := s.Bills.TotalSales(egCtx)
		if err != nil {
			return fmt.Errorf("total sales: %w", err)
		}
		st.TotalSales = total
		return nil
	})
	eg.Go(func() error {
		ps, err := s.Products.List(egCtx, repository.ProductFilter{LowStock: true})
		if err != nil {
			return fmt.Errorf("low stock: %w", err)
		}
		low = ps
		return nil
	})
	eg.Go(func() error {
		ps, err := s.Products.List(egCtx, repository.ProductFilter{})
		if err != nil {
			return fmt.Errorf("inventory: %w", err)
		}
		preview = ps
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	st.LowStock = len(low)
	if len(preview) > previewSize {
		preview = preview[:previewSize]
	}
	st.Inventory = make([]InventoryItem, 0, len(preview))
	for _, p := range preview {
		st.Inventory = append(st.Inventory, InventoryItem{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Quantity: p.Quantity,
			Status:   p.StockStatus(),
		})
	}

	metrics.UpdateCatalogTotals(int(st.Products), st.LowStock)
	return &st, nil
}
