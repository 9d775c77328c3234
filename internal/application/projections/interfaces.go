package projections

import (
	"context"

	domainAttendance "passport/internal/domain/attendance"
	domainParticipant "passport/internal/domain/participant"
	domainSeries "passport/internal/domain/series"
	domainSession "passport/internal/domain/session"
)

// SeriesReader interface for series queries.
type SeriesReader interface {
	GetByID(ctx context.Context, id string) (domainSeries.Series, error)
	ListAll(ctx context.Context) ([]domainSeries.Series, error)
}

// SessionReader interface for session queries.
type SessionReader interface {
	GetByID(ctx context.Context, id string) (domainSession.Session, error)
	ListBySeriesID(ctx context.Context, seriesID string) ([]domainSession.Session, error)
	ListRecent(ctx context.Context, limit int) ([]domainSession.Session, error)
	CountBySeriesID(ctx context.Context, seriesID string) (int, error)
}

// AttendanceReader interface for attendance queries.
type AttendanceReader interface {
	ListBySeriesID(ctx context.Context, seriesID string) ([]domainAttendance.Record, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]domainAttendance.Record, error)
	ListByParticipantID(ctx context.Context, participantID string) ([]domainAttendance.Record, error)
}

// ParticipantReader interface for participant lookups.
type ParticipantReader interface {
	GetByID(ctx context.Context, id string) (domainParticipant.Participant, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domainParticipant.Participant, error)
}
