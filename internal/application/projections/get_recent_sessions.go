package projections

import (
	"context"
	"time"

	"passport/internal/domain/authz"
	domainSession "passport/internal/domain/session"
)

// GetRecentSessionsQuery carries query parameters.
type GetRecentSessionsQuery struct {
	Email string
	Limit int // <=0 means the default of 20
}

// RecentSessionRow is one row on the admin's recent-sessions view.
type RecentSessionRow struct {
	SessionID  string
	SeriesID   string
	SeriesName string
	StartAt    time.Time
	Status     string
	CreatedBy  string
}

// GetRecentSessionsResult carries the query result.
type GetRecentSessionsResult struct {
	Sessions []RecentSessionRow
}

// GetRecentSessionsDeps holds dependencies for GetRecentSessions.
type GetRecentSessionsDeps struct {
	SessionStore SessionReader
	SeriesStore  SeriesReader
	Gate         *authz.Gate
	Now          func() time.Time
}

// QueryGetRecentSessions lists the most recently created sessions across all
// series. Platform admins only.
// PRE: deps.Gate and deps.Now are non-nil
// POST: returns ErrNotAuthorized for non-admin viewers
func QueryGetRecentSessions(ctx context.Context, query GetRecentSessionsQuery, deps GetRecentSessionsDeps) (GetRecentSessionsResult, error) {
	if !deps.Gate.IsAdmin(query.Email) {
		return GetRecentSessionsResult{}, ErrNotAuthorized
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	sessions, err := deps.SessionStore.ListRecent(ctx, limit)
	if err != nil {
		return GetRecentSessionsResult{}, err
	}

	now := deps.Now()
	names := make(map[string]string, len(sessions))
	rows := make([]RecentSessionRow, 0, len(sessions))
	for i := range sessions {
		sess := &sessions[i]
		name, ok := names[sess.SeriesID]
		if !ok {
			s, err := deps.SeriesStore.GetByID(ctx, sess.SeriesID)
			if err != nil {
				return GetRecentSessionsResult{}, err
			}
			name = s.Name
			names[sess.SeriesID] = name
		}
		rows = append(rows, RecentSessionRow{
			SessionID:  sess.ID,
			SeriesID:   sess.SeriesID,
			SeriesName: name,
			StartAt:    sess.StartAt,
			Status:     domainSession.Status(sess.CheckinOpenAt, sess.CheckinCloseAt, now),
			CreatedBy:  sess.CreatedBy,
		})
	}
	return GetRecentSessionsResult{Sessions: rows}, nil
}
