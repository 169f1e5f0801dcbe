package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("entity not found")

	// ErrInsufficientStock is returned when a decrement would take a
	// product's quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicate is returned when a unique constraint rejects a write
	// (user email, video youtube id).
	ErrDuplicate = errors.New("duplicate entity")
)

// ValidationError names the request field that was rejected. Handlers map
// it to 400 and echo Message to the client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
