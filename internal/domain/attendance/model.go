package attendance

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptySeriesID      = errors.New("attendance must reference a series")
	ErrEmptySessionID     = errors.New("attendance must reference a session")
	ErrEmptyParticipantID = errors.New("attendance must reference a participant")
	ErrNoTimestamp        = errors.New("attendance timestamp must be set")
)

// Record is one check-in: a participant scanned an open session's QR code.
// Records are immutable and append-only once created.
type Record struct {
	ID            string
	SeriesID      string
	SessionID     string
	ParticipantID string
	Timestamp     time.Time
}

// Validate checks if the Record has valid data.
// PRE: Record struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Record) Validate() error {
	if r.SeriesID == "" {
		return ErrEmptySeriesID
	}
	if r.SessionID == "" {
		return ErrEmptySessionID
	}
	if r.ParticipantID == "" {
		return ErrEmptyParticipantID
	}
	if r.Timestamp.IsZero() {
		return ErrNoTimestamp
	}
	return nil
}
