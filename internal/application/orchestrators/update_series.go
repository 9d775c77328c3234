package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"passport/internal/domain/authz"
	"passport/internal/domain/series"
)

// --- Update Details ---

// UpdateSeriesDetailsInput carries input for the detail update orchestrator.
// Name and Description use partial-update semantics: empty means unchanged.
type UpdateSeriesDetailsInput struct {
	SeriesID    string
	Email       string // caller
	Name        string
	Description string
	HasDesc     bool // true when the caller sent a description, even an empty one
	StartDate   time.Time
}

// UpdateSeriesDeps holds dependencies shared by the series update orchestrators.
type UpdateSeriesDeps struct {
	SeriesStore SeriesStoreForOrchestrator
	Gate        *authz.Gate
}

// ExecuteUpdateSeriesDetails updates name, description, and start date.
// PRE: caller must be admin, owner, or manager; series must be active
// POST: Non-empty fields are updated
func ExecuteUpdateSeriesDetails(ctx context.Context, input UpdateSeriesDetailsInput, deps UpdateSeriesDeps) (series.Series, error) {
	s, err := authorizeSeries(ctx, deps.SeriesStore, deps.Gate, input.Email, input.SeriesID)
	if err != nil {
		return series.Series{}, err
	}

	if !s.CanEditDetails() {
		return series.Series{}, series.ErrNotEditable
	}

	if strings.TrimSpace(input.Name) != "" {
		s.Name = strings.TrimSpace(input.Name)
	}
	if input.HasDesc {
		s.Description = input.Description
	}
	if !input.StartDate.IsZero() {
		s.StartDate = input.StartDate
	}

	if err := s.Validate(); err != nil {
		return series.Series{}, err
	}

	if err := deps.SeriesStore.Save(ctx, s); err != nil {
		return series.Series{}, err
	}

	slog.Info("series_event", "event", "series_updated", "series_id", s.ID, "by", input.Email)
	return s, nil
}

// --- Update Status ---

// UpdateSeriesStatusInput carries the requested lifecycle flags.
type UpdateSeriesStatusInput struct {
	SeriesID  string
	Email     string // caller
	IsActive  bool
	Completed bool
}

// ExecuteUpdateSeriesStatus sets the lifecycle flags. Marking a series
// completed always deactivates it, whatever the caller sent for IsActive.
// PRE: caller must be admin, owner, or manager
// POST: Completed implies !IsActive
func ExecuteUpdateSeriesStatus(ctx context.Context, input UpdateSeriesStatusInput, deps UpdateSeriesDeps) (series.Series, error) {
	s, err := authorizeSeries(ctx, deps.SeriesStore, deps.Gate, input.Email, input.SeriesID)
	if err != nil {
		return series.Series{}, err
	}

	s.IsActive = input.IsActive
	s.Completed = input.Completed
	s.NormalizeStatus()

	if err := deps.SeriesStore.Save(ctx, s); err != nil {
		return series.Series{}, err
	}

	slog.Info("series_event", "event", "series_status_updated", "series_id", s.ID, "is_active", s.IsActive, "completed", s.Completed, "by", input.Email)
	return s, nil
}

// --- Update Rewards ---

// UpdateSeriesRewardsInput carries the requested reward thresholds.
type UpdateSeriesRewardsInput struct {
	SeriesID string
	Email    string // caller
	Rewards  []int
}

// ExecuteUpdateSeriesRewards replaces the reward thresholds with a cleaned
// copy: positive, deduplicated, ascending.
// PRE: caller must be admin, owner, or manager
// POST: Rewards stored ascending and strictly positive
func ExecuteUpdateSeriesRewards(ctx context.Context, input UpdateSeriesRewardsInput, deps UpdateSeriesDeps) (series.Series, error) {
	s, err := authorizeSeries(ctx, deps.SeriesStore, deps.Gate, input.Email, input.SeriesID)
	if err != nil {
		return series.Series{}, err
	}

	s.SetRewards(input.Rewards)

	if err := deps.SeriesStore.Save(ctx, s); err != nil {
		return series.Series{}, err
	}

	slog.Info("series_event", "event", "series_rewards_updated", "series_id", s.ID, "rewards", s.Rewards, "by", input.Email)
	return s, nil
}
