package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

// CreateInput represents the input parameters for creating a new product.
type CreateInput struct {
	Name        string
	Price       float64
	Description string
	Quantity    int
	Category    string
}

// UpdateInput represents the input parameters for updating an existing product.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID          int64
	Name        *string
	Price       *float64
	Description *string
	Quantity    *int
	Category    *string
}

// Service provides product management use cases.
type Service struct {
	Repo repository.ProductRepository
}

// List retrieves products matching filter.
// An unknown category yields a ValidationError.
func (s *Service) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	if filter.Category != "" && !entity.IsKnownCategory(filter.Category) {
		return nil, &entity.ValidationError{Field: "category", Message: "unknown category"}
	}
	products, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Search finds products whose name, description or category contains kw.
func (s *Service) Search(ctx context.Context, kw string) ([]*entity.Product, error) {
	products, err := s.Repo.Search(ctx, strings.TrimSpace(kw))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Get retrieves a single product by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidProductID
	}
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Create applies defaults, validates and stores a new product.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Product, error) {
	p := &entity.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Quantity:    in.Quantity,
		Category:    in.Category,
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update modifies an existing product. Only non-nil fields are changed.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Product, error) {
	p, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes a product by its ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidProductID
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
