package session

import (
	"context"

	domain "passport/internal/domain/session"
)

// Store persists Session state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, value domain.Session) error
	Delete(ctx context.Context, id string) error
	ListBySeriesID(ctx context.Context, seriesID string) ([]domain.Session, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Session, error)
	CountBySeriesID(ctx context.Context, seriesID string) (int, error)
}
