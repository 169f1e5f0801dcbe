// Package product provides use cases for managing marketplace products.
// It implements defaults, validation and not-found handling on top of the
// product repository.
package product

import "errors"

// Sentinel errors for product use case operations.
var (
	// ErrProductNotFound indicates that the requested product was not found.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidProductID indicates that the provided product ID is invalid.
	// Product IDs must be positive integers.
	ErrInvalidProductID = errors.New("invalid product ID")
)
