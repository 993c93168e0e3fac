package branch

import (
	"context"
	"errors"

	domain "gymhub/internal/domain/branch"
)

// ErrNotFound is returned when no branch has the requested id.
var ErrNotFound = errors.New("branch not found")

// Store persists the branch catalog.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Branch, error)
	Save(ctx context.Context, value domain.Branch) error
	List(ctx context.Context) ([]domain.Branch, error)
	Count(ctx context.Context) (int, error)
}
