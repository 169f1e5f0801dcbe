package bill

import (
	"errors"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

var (
	ErrBillNotFound  = errors.New("bill not found")
	ErrInvalidBillID = errors.New("invalid bill id")

	// ErrEmptyCart is returned when checking out a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInsufficientStock is returned when a line asks for more units than
	// are on hand. Nothing is written in that case.
	ErrInsufficientStock = entity.ErrInsufficientStock

	// ErrCartNotFound is returned when checking out an unknown or expired cart.
	ErrCartNotFound = repository.ErrCartNotFound
)
