package projections

import (
	"context"
	"errors"
	"testing"

	domainSession "passport/internal/domain/session"
)

func recentSessionsDeps(f *fixture) GetRecentSessionsDeps {
	return GetRecentSessionsDeps{
		SessionStore: f.sessions,
		SeriesStore:  f.series,
		Gate:         f.gate,
		Now:          f.clock(),
	}
}

// TestQueryGetRecentSessions_AdminView verifies the admin feed resolves
// series names and computes live statuses.
func TestQueryGetRecentSessions_AdminView(t *testing.T) {
	f := newFixture()
	query := GetRecentSessionsQuery{Email: "admin@x.com"}

	result, err := QueryGetRecentSessions(context.Background(), query, recentSessionsDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(result.Sessions))
	}
	first := result.Sessions[0]
	if first.SeriesName != "Te Reo Club" || first.CreatedBy != "owner@x.com" {
		t.Errorf("unexpected row: %+v", first)
	}
	if first.Status != domainSession.StatusOpen {
		t.Errorf("expected OPEN at fixture clock, got %s", first.Status)
	}
}

// TestQueryGetRecentSessions_LimitApplied verifies the limit caps the feed.
func TestQueryGetRecentSessions_LimitApplied(t *testing.T) {
	f := newFixture()
	query := GetRecentSessionsQuery{Email: "admin@x.com", Limit: 2}
	result, err := QueryGetRecentSessions(context.Background(), query, recentSessionsDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(result.Sessions))
	}
}

// TestQueryGetRecentSessions_NonAdminForbidden verifies owners and managers
// do not get the cross-series feed.
func TestQueryGetRecentSessions_NonAdminForbidden(t *testing.T) {
	f := newFixture()
	for _, email := range []string{"owner@x.com", "manager@x.com", ""} {
		query := GetRecentSessionsQuery{Email: email}
		_, err := QueryGetRecentSessions(context.Background(), query, recentSessionsDeps(f))
		if !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("%q: expected ErrNotAuthorized, got %v", email, err)
		}
	}
}
