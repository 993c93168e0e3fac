package product

import (
	"context"
	"errors"

	domain "gymhub/internal/domain/product"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// Store persists the storefront catalog.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Product, error)
	Save(ctx context.Context, value domain.Product) error
	List(ctx context.Context, category string) ([]domain.Product, error)
	Count(ctx context.Context) (int, error)
}
