package projections

import (
	"context"
	"errors"
	"strings"
	"time"

	domainAttendance "passport/internal/domain/attendance"
	"passport/internal/domain/authz"
	domainSession "passport/internal/domain/session"
)

// ErrNotAuthorized is returned when the viewer cannot see the queried data.
var ErrNotAuthorized = errors.New("not authorized for this series")

// GetSeriesDetailQuery carries query parameters.
type GetSeriesDetailQuery struct {
	SeriesID string
	Email    string
}

// SeriesSessionRow is one session row on the series page. Status and the
// attendee count are computed at query time, never stored.
type SeriesSessionRow struct {
	ID             string
	StartAt        time.Time
	CheckinOpenAt  time.Time
	CheckinCloseAt time.Time
	Status         string
	AttendeeCount  int
}

// GetSeriesDetailResult carries the query result.
type GetSeriesDetailResult struct {
	ID            string
	Name          string
	Description   string // raw markdown, rendered at the edge
	StartDate     time.Time
	IsActive      bool
	Completed     bool
	Owner         string
	Managers      []string
	Rewards       []int
	IsOwner       bool
	CanEditRoster bool
	Sessions      []SeriesSessionRow
}

// GetSeriesDetailDeps holds dependencies for GetSeriesDetail.
type GetSeriesDetailDeps struct {
	SeriesStore     SeriesReader
	SessionStore    SessionReader
	AttendanceStore AttendanceReader
	Gate            *authz.Gate
	Now             func() time.Time
}

// QueryGetSeriesDetail retrieves a series with its sessions and their
// check-in window states at the current instant.
// PRE: deps.Gate and deps.Now are non-nil
// POST: returns ErrNotAuthorized unless the viewer can manage the series
func QueryGetSeriesDetail(ctx context.Context, query GetSeriesDetailQuery, deps GetSeriesDetailDeps) (GetSeriesDetailResult, error) {
	s, err := deps.SeriesStore.GetByID(ctx, query.SeriesID)
	if err != nil {
		return GetSeriesDetailResult{}, err
	}
	if !deps.Gate.CanView(query.Email, &s) {
		return GetSeriesDetailResult{}, ErrNotAuthorized
	}

	sessions, err := deps.SessionStore.ListBySeriesID(ctx, query.SeriesID)
	if err != nil {
		return GetSeriesDetailResult{}, err
	}
	records, err := deps.AttendanceStore.ListBySeriesID(ctx, query.SeriesID)
	if err != nil {
		return GetSeriesDetailResult{}, err
	}
	counts := domainAttendance.CountBySession(records)

	now := deps.Now()
	rows := make([]SeriesSessionRow, 0, len(sessions))
	for i := range sessions {
		sess := &sessions[i]
		rows = append(rows, SeriesSessionRow{
			ID:             sess.ID,
			StartAt:        sess.StartAt,
			CheckinOpenAt:  sess.CheckinOpenAt,
			CheckinCloseAt: sess.CheckinCloseAt,
			Status:         domainSession.Status(sess.CheckinOpenAt, sess.CheckinCloseAt, now),
			AttendeeCount:  counts[sess.ID],
		})
	}

	return GetSeriesDetailResult{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		StartDate:     s.StartDate,
		IsActive:      s.IsActive,
		Completed:     s.Completed,
		Owner:         s.Owner(),
		Managers:      s.Managers,
		Rewards:       s.Rewards,
		IsOwner:       strings.ToLower(strings.TrimSpace(query.Email)) == s.Owner(),
		CanEditRoster: deps.Gate.CanEditRoster(query.Email, &s),
		Sessions:      rows,
	}, nil
}
