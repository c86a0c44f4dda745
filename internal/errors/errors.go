// Package errors defines the recoverable error kinds the storefront core
// reports to its callers. Every error here is scoped to a single operation;
// none is fatal to the process.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductInactive    = errors.New("product is not available")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSelfDemotion       = errors.New("you cannot remove your own admin access")
	ErrLastAdmin          = errors.New("at least one admin account must remain")
)

// InsufficientInventoryError reports a requested quantity that exceeds the
// product's current stock. It names the offending product so callers can
// re-decide; the core never retries with a reduced quantity.
type InsufficientInventoryError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IsInsufficientInventory reports whether err is an InsufficientInventoryError.
func IsInsufficientInventory(err error) bool {
	var iie *InsufficientInventoryError
	return errors.As(err, &iie)
}

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}
