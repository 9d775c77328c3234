package orchestrators

import (
	"context"
	"log/slog"

	"passport/internal/domain/authz"
)

// AttendanceStoreForDelete defines the attendance store interface needed by
// the session delete cascade.
type AttendanceStoreForDelete interface {
	DeleteBySessionID(ctx context.Context, sessionID string) (int, error)
}

// DeleteSessionInput carries input for the delete session orchestrator.
type DeleteSessionInput struct {
	SeriesID  string
	SessionID string
	Email     string // caller
}

// DeleteSessionDeps holds dependencies for DeleteSession.
type DeleteSessionDeps struct {
	SeriesStore     SeriesStoreForOrchestrator
	SessionStore    SessionStoreForOrchestrator
	AttendanceStore AttendanceStoreForDelete
	Gate            *authz.Gate
}

// ExecuteDeleteSession removes a session and its attendance records in two
// idempotent phases: attendance first, then the session itself. A retry after
// a partial failure simply deletes whatever is left without erroring on the
// rows already gone.
// PRE: caller must be admin, owner, or manager
// POST: No attendance rows remain for the session; the session row is gone
func ExecuteDeleteSession(ctx context.Context, input DeleteSessionInput, deps DeleteSessionDeps) error {
	s, err := authorizeSeries(ctx, deps.SeriesStore, deps.Gate, input.Email, input.SeriesID)
	if err != nil {
		return err
	}
	if input.SessionID == "" {
		return ErrNotFound
	}

	// A session fetched under the wrong series must not be deletable.
	sess, err := deps.SessionStore.GetByID(ctx, input.SessionID)
	if err != nil {
		return ErrNotFound
	}
	if sess.SeriesID != s.ID {
		return ErrNotFound
	}

	// Phase 1: attendance rows. Zero deleted is fine on retry.
	removed, err := deps.AttendanceStore.DeleteBySessionID(ctx, input.SessionID)
	if err != nil {
		return err
	}

	// Phase 2: the session row.
	if err := deps.SessionStore.Delete(ctx, input.SessionID); err != nil {
		return err
	}

	slog.Info("session_event", "event", "session_deleted", "session_id", input.SessionID, "series_id", s.ID, "attendance_removed", removed, "by", input.Email)
	return nil
}
