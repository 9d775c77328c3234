package series

import (
	"context"

	domain "passport/internal/domain/series"
)

// Store persists Series state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Series, error)
	Save(ctx context.Context, value domain.Series) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Series, error)
	ListAll(ctx context.Context) ([]domain.Series, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
}
