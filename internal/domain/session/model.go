package session

import (
	"errors"
	"time"
)

// Check-in window status values.
const (
	StatusUpcoming = "UPCOMING"
	StatusOpen     = "OPEN"
	StatusClosed   = "CLOSED"
	StatusUnknown  = "UNKNOWN"
)

// Domain errors
var (
	ErrEmptySeriesID = errors.New("session must belong to a series")
	ErrNoWindow      = errors.New("check-in open and close times must be set")
	ErrWindowOrder   = errors.New("check-in close cannot be before open")
)

// Session is one dated occurrence of a series with a time-boxed check-in
// window and an opaque scan token.
type Session struct {
	ID             string
	SeriesID       string
	StartAt        time.Time
	CheckinOpenAt  time.Time // zero = not set
	CheckinCloseAt time.Time // zero = not set
	Token          string    // opaque random token, shown only while not CLOSED
	CreatedBy      string
	CreatedAt      time.Time
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if s.SeriesID == "" {
		return ErrEmptySeriesID
	}
	if s.CheckinOpenAt.IsZero() || s.CheckinCloseAt.IsZero() {
		return ErrNoWindow
	}
	if s.CheckinCloseAt.Before(s.CheckinOpenAt) {
		return ErrWindowOrder
	}
	return nil
}

// Status computes the check-in window state for an instant. Both boundaries
// are inclusive: now == open and now == close are both OPEN. Must be
// re-evaluated on every read, never cached across time.
// PRE: none (zero bounds allowed)
// POST: Returns UNKNOWN if either bound is missing, else UPCOMING/OPEN/CLOSED
func Status(openAt, closeAt time.Time, now time.Time) string {
	if openAt.IsZero() || closeAt.IsZero() {
		return StatusUnknown
	}
	if now.Before(openAt) {
		return StatusUpcoming
	}
	if now.After(closeAt) {
		return StatusClosed
	}
	return StatusOpen
}

// Status evaluates the session's own window at the given instant.
func (s *Session) Status(now time.Time) string {
	return Status(s.CheckinOpenAt, s.CheckinCloseAt, now)
}

// VisibleToken returns the token readers may see at the given instant. Once
// the window is CLOSED the token is redacted (empty) even though it remains
// stored, so a late scan of an old QR code cannot check anyone in.
// PRE: Session is initialized
// POST: Returns the stored token unless Status(now) == CLOSED
func (s *Session) VisibleToken(now time.Time) string {
	if s.Status(now) == StatusClosed {
		return ""
	}
	return s.Token
}
