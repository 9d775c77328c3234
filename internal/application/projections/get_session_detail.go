package projections

import (
	"context"
	"time"

	domainSession "passport/internal/domain/session"
)

// GetSessionDetailQuery carries query parameters.
type GetSessionDetailQuery struct {
	SessionID string
}

// GetSessionDetailResult carries the query result. Token is already
// redacted: empty once the window has closed.
type GetSessionDetailResult struct {
	ID             string
	SeriesID       string
	SeriesName     string
	StartAt        time.Time
	CheckinOpenAt  time.Time
	CheckinCloseAt time.Time
	Status         string
	Token          string
	AttendeeCount  int
	ServerTime     time.Time
}

// GetSessionDetailDeps holds dependencies for GetSessionDetail.
type GetSessionDetailDeps struct {
	SessionStore    SessionReader
	SeriesStore     SeriesReader
	AttendanceStore AttendanceReader
	Now             func() time.Time
}

// QueryGetSessionDetail retrieves one session with its window state at the
// current instant. This is the poller's session feed: the caller re-queries
// rather than caching Status or Token.
// PRE: deps.Now is non-nil
// POST: Token is empty when Status is CLOSED; ServerTime is the evaluation instant
func QueryGetSessionDetail(ctx context.Context, query GetSessionDetailQuery, deps GetSessionDetailDeps) (GetSessionDetailResult, error) {
	sess, err := deps.SessionStore.GetByID(ctx, query.SessionID)
	if err != nil {
		return GetSessionDetailResult{}, err
	}
	s, err := deps.SeriesStore.GetByID(ctx, sess.SeriesID)
	if err != nil {
		return GetSessionDetailResult{}, err
	}
	records, err := deps.AttendanceStore.ListBySessionID(ctx, query.SessionID)
	if err != nil {
		return GetSessionDetailResult{}, err
	}

	now := deps.Now()
	return GetSessionDetailResult{
		ID:             sess.ID,
		SeriesID:       sess.SeriesID,
		SeriesName:     s.Name,
		StartAt:        sess.StartAt,
		CheckinOpenAt:  sess.CheckinOpenAt,
		CheckinCloseAt: sess.CheckinCloseAt,
		Status:         domainSession.Status(sess.CheckinOpenAt, sess.CheckinCloseAt, now),
		Token:          sess.VisibleToken(now),
		AttendeeCount:  len(records),
		ServerTime:     now,
	}, nil
}
