package cart

import (
	"errors"

	"agrisense/internal/repository"
)

var (
	// ErrCartNotFound is returned when the cart ID is unknown or the cart expired.
	ErrCartNotFound = repository.ErrCartNotFound

	// ErrOutOfStock is returned when a product has no stock left, or the
	// requested line quantity exceeds what is on hand.
	ErrOutOfStock = errors.New("product out of stock")

	// ErrProductNotFound is returned when adding a product that does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidProductID is returned for a non-positive product ID.
	ErrInvalidProductID = errors.New("invalid product id")
)
