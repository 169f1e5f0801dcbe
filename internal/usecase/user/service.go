// Package user provides use cases for the farmer directory.
package user

import (
	"context"
	"errors"
	"fmt"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidUserID = errors.New("invalid user ID")
	// ErrEmailTaken is returned when another user already has the email.
	ErrEmailTaken = errors.New("email already exists")
)

// Input is used for both create and update.
type Input struct {
	Name     string
	Email    string
	Phone    string
	Location string
	Role     string
}

type Service struct {
	Repo repository.UserRepository
}

func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}
	u, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*entity.User, error) {
	u := fromInput(in)
	u.ApplyDefaults()
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, u.Email, 0); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*entity.User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u := fromInput(in)
	u.ID = existing.ID
	u.CreatedAt = existing.CreatedAt
	u.ApplyDefaults()
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, u.Email, u.ID); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidUserID
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ensureEmailFree rejects email if a user other than selfID owns it.
// The unique index still guards concurrent inserts.
func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	other, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if other != nil && other.ID != selfID {
		return ErrEmailTaken
	}
	return nil
}

func fromInput(in Input) *entity.User {
	return &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Location: in.Location,
		Role:     in.Role,
	}
}
