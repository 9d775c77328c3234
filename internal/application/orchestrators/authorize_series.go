package orchestrators

import (
	"context"
	"strings"

	"passport/internal/domain/authz"
	"passport/internal/domain/series"
)

// SeriesStoreForOrchestrator defines the series store interface shared by
// series and session orchestrators.
type SeriesStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (series.Series, error)
	Save(ctx context.Context, s series.Series) error
}

// authorizeSeries loads a series and checks that the caller may manage it.
// Every mutation on a series or its sessions funnels through here so the
// access rules live in one place.
// PRE: gate is non-nil
// POST: Returns the series when the caller is admin, owner, or manager
func authorizeSeries(ctx context.Context, store SeriesStoreForOrchestrator, gate *authz.Gate, email, seriesID string) (series.Series, error) {
	if strings.TrimSpace(email) == "" {
		return series.Series{}, ErrUnauthenticated
	}
	if seriesID == "" {
		return series.Series{}, ErrNotFound
	}

	s, err := store.GetByID(ctx, seriesID)
	if err != nil {
		return series.Series{}, ErrNotFound
	}

	if !gate.CanManage(email, &s) {
		return series.Series{}, ErrForbidden
	}
	return s, nil
}

// authorizeRoster is like authorizeSeries but applies the stricter roster
// rule: only admins and the owner may touch the manager list.
func authorizeRoster(ctx context.Context, store SeriesStoreForOrchestrator, gate *authz.Gate, email, seriesID string) (series.Series, error) {
	if strings.TrimSpace(email) == "" {
		return series.Series{}, ErrUnauthenticated
	}
	if seriesID == "" {
		return series.Series{}, ErrNotFound
	}

	s, err := store.GetByID(ctx, seriesID)
	if err != nil {
		return series.Series{}, ErrNotFound
	}

	if !gate.CanEditRoster(email, &s) {
		return series.Series{}, ErrForbidden
	}
	return s, nil
}
