package attendance

import (
	"context"

	domain "passport/internal/domain/attendance"
)

// Store persists attendance records.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	Save(ctx context.Context, value domain.Record) error
	Delete(ctx context.Context, id string) error
	ListBySeriesID(ctx context.Context, seriesID string) ([]domain.Record, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]domain.Record, error)
	ListByParticipantID(ctx context.Context, participantID string) ([]domain.Record, error)
	ExistsBySessionAndParticipant(ctx context.Context, sessionID, participantID string) (bool, error)
	DeleteBySessionID(ctx context.Context, sessionID string) (int, error)
}
