package product

import (
	"context"
	"fmt"
	"sort"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

// LowStockNotifier receives the products found by Audit.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, products []entity.Product) error
}

// Audit lists products below the low-stock threshold, lowest quantity
// first, and hands them to n. It returns how many were reported.
func (s *Service) Audit(ctx context.Context, n LowStockNotifier) (int, error) {
	low, err := s.Repo.List(ctx, repository.ProductFilter{LowStock: true})
	if err != nil {
		return 0, fmt.Errorf("audit stock: %w", err)
	}
	if len(low) == 0 {
		return 0, nil
	}

	products := make([]entity.Product, 0, len(low))
	for _, p := range low {
		products = append(products, *p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Quantity != products[j].Quantity {
			return products[i].Quantity < products[j].Quantity
		}
		return products[i].ID < products[j].ID
	})

	if err := n.NotifyLowStock(ctx, products); err != nil {
		return 0, fmt.Errorf("notify low stock: %w", err)
	}
	return len(products), nil
}
