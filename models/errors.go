package models

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse is returned when deleting a category that still has products.
	ErrCategoryInUse = errors.New("category still has products")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrConstraint is returned when a write violates a check constraint.
	ErrConstraint = errors.New("constraint violation")
)

const (
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
