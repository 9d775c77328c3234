package projections

import (
	"context"
	"testing"
	"time"

	domainSession "passport/internal/domain/session"
)

func sessionDetailDeps(f *fixture) GetSessionDetailDeps {
	return GetSessionDetailDeps{
		SessionStore:    f.sessions,
		SeriesStore:     f.series,
		AttendanceStore: f.attendance,
		Now:             f.clock(),
	}
}

// TestQueryGetSessionDetail_OpenWindow verifies the token stays visible and
// the status reads OPEN while inside the window.
func TestQueryGetSessionDetail_OpenWindow(t *testing.T) {
	f := newFixture()
	result, err := QueryGetSessionDetail(context.Background(), GetSessionDetailQuery{SessionID: "se-1"}, sessionDetailDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != domainSession.StatusOpen {
		t.Errorf("expected OPEN, got %s", result.Status)
	}
	if result.Token != "tok-se-1" {
		t.Errorf("expected token visible while open, got %q", result.Token)
	}
	if result.SeriesName != "Te Reo Club" || result.AttendeeCount != 3 {
		t.Errorf("unexpected detail: %+v", result)
	}
	if !result.ServerTime.Equal(f.now) {
		t.Errorf("expected server time %v, got %v", f.now, result.ServerTime)
	}
}

// TestQueryGetSessionDetail_ClosedRedactsToken verifies the token disappears
// once the window closes.
func TestQueryGetSessionDetail_ClosedRedactsToken(t *testing.T) {
	f := newFixture()
	f.now = f.now.Add(2 * time.Hour)

	result, err := QueryGetSessionDetail(context.Background(), GetSessionDetailQuery{SessionID: "se-1"}, sessionDetailDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domainSession.StatusClosed {
		t.Errorf("expected CLOSED, got %s", result.Status)
	}
	if result.Token != "" {
		t.Errorf("expected token redacted after close, got %q", result.Token)
	}
}

// TestQueryGetSessionDetail_UpcomingKeepsToken verifies an upcoming session
// still exposes its token for printing the QR ahead of time.
func TestQueryGetSessionDetail_UpcomingKeepsToken(t *testing.T) {
	f := newFixture()
	result, err := QueryGetSessionDetail(context.Background(), GetSessionDetailQuery{SessionID: "se-3"}, sessionDetailDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domainSession.StatusUpcoming {
		t.Errorf("expected UPCOMING, got %s", result.Status)
	}
	if result.Token != "tok-se-3" {
		t.Errorf("expected token visible before open, got %q", result.Token)
	}
}

// TestQueryGetSessionDetail_UnknownSession verifies the lookup error
// propagates.
func TestQueryGetSessionDetail_UnknownSession(t *testing.T) {
	f := newFixture()
	if _, err := QueryGetSessionDetail(context.Background(), GetSessionDetailQuery{SessionID: "nope"}, sessionDetailDeps(f)); err == nil {
		t.Fatal("expected error for unknown session")
	}
}
