package orchestrators

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"passport/internal/domain/attendance"
	"passport/internal/domain/participant"
	"passport/internal/domain/session"
)

// Scan check-in errors.
var (
	ErrInvalidToken     = errors.New("invalid or expired code")
	ErrWindowNotOpen    = errors.New("check-in window is not open")
	ErrAlreadyCheckedIn = errors.New("already checked in for this session")
)

// AttendanceStoreForCheckin defines the attendance store interface needed by
// the scan check-in orchestrator.
type AttendanceStoreForCheckin interface {
	Save(ctx context.Context, r attendance.Record) error
	ExistsBySessionAndParticipant(ctx context.Context, sessionID, participantID string) (bool, error)
}

// ParticipantStoreForCheckin defines the participant store interface needed
// by the scan check-in orchestrator.
type ParticipantStoreForCheckin interface {
	GetByID(ctx context.Context, id string) (participant.Participant, error)
	Save(ctx context.Context, p participant.Participant) error
}

// ScanCheckinInput carries input for the scan check-in orchestrator. The
// session id and token come straight off the scanned QR payload.
type ScanCheckinInput struct {
	SessionID     string
	Token         string
	ParticipantID string
}

// ScanCheckinResult carries the outcome of a successful check-in.
type ScanCheckinResult struct {
	Record     attendance.Record
	Experience int // participant experience after the bump
}

// ScanCheckinDeps holds dependencies for ScanCheckin.
type ScanCheckinDeps struct {
	SessionStore     SessionStoreForOrchestrator
	AttendanceStore  AttendanceStoreForCheckin
	ParticipantStore ParticipantStoreForCheckin
	AllowRepeat      bool // a second scan for the same session records again
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteScanCheckin records attendance for a scanned QR code. The token must
// match the session and the check-in window must be OPEN at the moment of the
// scan; a stale QR code from a closed session is rejected even with the right
// token. Unknown participants are created on first check-in. Every recorded
// check-in bumps the participant's experience by one.
// PRE: SessionID, Token, ParticipantID are non-empty
// POST: Attendance record persisted; participant experience incremented
func ExecuteScanCheckin(ctx context.Context, input ScanCheckinInput, deps ScanCheckinDeps) (ScanCheckinResult, error) {
	participantID := strings.TrimSpace(input.ParticipantID)
	if input.SessionID == "" || input.Token == "" || participantID == "" {
		return ScanCheckinResult{}, ErrInvalidToken
	}

	sess, err := deps.SessionStore.GetByID(ctx, input.SessionID)
	if err != nil {
		return ScanCheckinResult{}, ErrInvalidToken
	}

	if subtle.ConstantTimeCompare([]byte(sess.Token), []byte(input.Token)) != 1 {
		slog.Info("checkin_event", "event", "checkin_rejected", "session_id", input.SessionID, "reason", "bad_token")
		return ScanCheckinResult{}, ErrInvalidToken
	}

	now := deps.Now()
	if status := sess.Status(now); status != session.StatusOpen {
		slog.Info("checkin_event", "event", "checkin_rejected", "session_id", input.SessionID, "reason", "window_"+strings.ToLower(status))
		return ScanCheckinResult{}, ErrWindowNotOpen
	}

	if !deps.AllowRepeat {
		exists, err := deps.AttendanceStore.ExistsBySessionAndParticipant(ctx, input.SessionID, participantID)
		if err != nil {
			return ScanCheckinResult{}, err
		}
		if exists {
			return ScanCheckinResult{}, ErrAlreadyCheckedIn
		}
	}

	record := attendance.Record{
		ID:            deps.GenerateID(),
		SeriesID:      sess.SeriesID,
		SessionID:     sess.ID,
		ParticipantID: participantID,
		Timestamp:     now,
	}
	if err := record.Validate(); err != nil {
		return ScanCheckinResult{}, err
	}
	if err := deps.AttendanceStore.Save(ctx, record); err != nil {
		return ScanCheckinResult{}, err
	}

	// First scan from a new device creates the participant on the spot.
	p, err := deps.ParticipantStore.GetByID(ctx, participantID)
	if err != nil {
		p = participant.Participant{ID: participantID}
	}
	p.RecordCheckIn()
	if err := deps.ParticipantStore.Save(ctx, p); err != nil {
		return ScanCheckinResult{}, err
	}

	slog.Info("checkin_event", "event", "checked_in", "session_id", sess.ID, "series_id", sess.SeriesID, "participant_id", participantID, "experience", p.Experience)
	return ScanCheckinResult{Record: record, Experience: p.Experience}, nil
}
