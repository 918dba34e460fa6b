package sales

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMethod    = errors.New("Invalid request method")
	ErrMalformedRequest = errors.New("malformed request")
	ErrNotFound         = errors.New("product not found")
)

// NotFoundError names the cart product that does not exist.
type NotFoundError struct {
	ProductID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product with id %d does not exist", e.ProductID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientStockError names the product whose combined demand in the cart
// exceeds its stock.
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s: %d available, %d requested", e.Name, e.Available, e.Requested)
}
