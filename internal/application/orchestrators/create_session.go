package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"passport/internal/domain/authz"
	"passport/internal/domain/session"
)

// SessionStoreForOrchestrator defines the session store interface needed by
// session orchestrators.
type SessionStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (session.Session, error)
	Save(ctx context.Context, s session.Session) error
	Delete(ctx context.Context, id string) error
}

// CreateSessionInput carries input for the single-session orchestrator.
type CreateSessionInput struct {
	SeriesID       string
	Email          string // caller
	StartAt        time.Time
	CheckinOpenAt  time.Time
	CheckinCloseAt time.Time
}

// CreateSessionDeps holds dependencies for CreateSession.
type CreateSessionDeps struct {
	SeriesStore   SeriesStoreForOrchestrator
	SessionStore  SessionStoreForOrchestrator
	Gate          *authz.Gate
	GenerateID    func() string
	GenerateToken func() (string, error)
	Now           func() time.Time
}

// ExecuteCreateSession creates one session with a fresh scan token.
// PRE: caller must be admin, owner, or manager; series must be active and not completed
// POST: Session persisted with a window and an unguessable token
func ExecuteCreateSession(ctx context.Context, input CreateSessionInput, deps CreateSessionDeps) (session.Session, error) {
	s, err := authorizeSeries(ctx, deps.SeriesStore, deps.Gate, input.Email, input.SeriesID)
	if err != nil {
		return session.Session{}, err
	}

	if !s.CanCreateSessions() {
		return session.Session{}, ErrSeriesClosed
	}

	token, err := deps.GenerateToken()
	if err != nil {
		return session.Session{}, err
	}

	startAt := input.StartAt
	if startAt.IsZero() {
		startAt = input.CheckinOpenAt
	}

	sess := session.Session{
		ID:             deps.GenerateID(),
		SeriesID:       s.ID,
		StartAt:        startAt,
		CheckinOpenAt:  input.CheckinOpenAt,
		CheckinCloseAt: input.CheckinCloseAt,
		Token:          token,
		CreatedBy:      input.Email,
		CreatedAt:      deps.Now(),
	}

	if err := sess.Validate(); err != nil {
		return session.Session{}, err
	}

	if err := deps.SessionStore.Save(ctx, sess); err != nil {
		return session.Session{}, err
	}

	slog.Info("session_event", "event", "session_created", "session_id", sess.ID, "series_id", s.ID, "by", input.Email)
	return sess, nil
}

// CreateRecurringSessionsInput carries input for the batch orchestrator.
type CreateRecurringSessionsInput struct {
	SeriesID   string
	Email      string // caller
	Recurrence session.Recurrence
}

// ExecuteCreateRecurringSessions expands a recurrence rule and creates one
// session per surviving occurrence, each with its own token. An all-removed
// batch creates nothing and is not an error.
// PRE: caller must be admin, owner, or manager; series must be active and not completed
// POST: Returns the created sessions in occurrence order
func ExecuteCreateRecurringSessions(ctx context.Context, input CreateRecurringSessionsInput, deps CreateSessionDeps) ([]session.Session, error) {
	s, err := authorizeSeries(ctx, deps.SeriesStore, deps.Gate, input.Email, input.SeriesID)
	if err != nil {
		return nil, err
	}

	if !s.CanCreateSessions() {
		return nil, ErrSeriesClosed
	}

	if err := input.Recurrence.Validate(); err != nil {
		return nil, err
	}

	occurrences := input.Recurrence.Expand()
	created := make([]session.Session, 0, len(occurrences))
	for _, occ := range occurrences {
		token, err := deps.GenerateToken()
		if err != nil {
			return created, err
		}
		sess := session.Session{
			ID:             deps.GenerateID(),
			SeriesID:       s.ID,
			StartAt:        occ.StartAt,
			CheckinOpenAt:  occ.OpenAt,
			CheckinCloseAt: occ.CloseAt,
			Token:          token,
			CreatedBy:      input.Email,
			CreatedAt:      deps.Now(),
		}
		if err := sess.Validate(); err != nil {
			return created, err
		}
		if err := deps.SessionStore.Save(ctx, sess); err != nil {
			return created, err
		}
		created = append(created, sess)
	}

	slog.Info("session_event", "event", "recurring_sessions_created", "series_id", s.ID, "count", len(created), "by", input.Email)
	return created, nil
}
