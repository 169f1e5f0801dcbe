// Package machinery provides use cases for the farm machinery catalog.
package machinery

import (
	"context"
	"errors"
	"fmt"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

var (
	ErrMachineryNotFound  = errors.New("machinery not found")
	ErrInvalidMachineryID = errors.New("invalid machinery ID")
)

// Input is used for both create and update; update replaces every field.
type Input struct {
	Name        string
	Price       float64
	Description string
	ImageURL    string
}

type Service struct {
	Repo repository.MachineryRepository
}

func (s *Service) List(ctx context.Context) ([]*entity.Machinery, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list machinery: %w", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Machinery, error) {
	if id <= 0 {
		return nil, ErrInvalidMachineryID
	}
	m, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get machinery: %w", err)
	}
	if m == nil {
		return nil, ErrMachineryNotFound
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*entity.Machinery, error) {
	m := &entity.Machinery{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	m.ApplyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create machinery: %w", err)
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*entity.Machinery, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Name = in.Name
	m.Price = in.Price
	m.Description = in.Description
	m.ImageURL = in.ImageURL
	m.ApplyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, m); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrMachineryNotFound
		}
		return nil, fmt.Errorf("update machinery: %w", err)
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidMachineryID
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrMachineryNotFound
		}
		return fmt.Errorf("delete machinery: %w", err)
	}
	return nil
}
