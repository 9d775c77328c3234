package participant

import (
	"context"

	domain "passport/internal/domain/participant"
)

// Store persists Participant state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Participant, error)
	Save(ctx context.Context, value domain.Participant) error
	Delete(ctx context.Context, id string) error
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Participant, error)
}
