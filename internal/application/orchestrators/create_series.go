package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"passport/internal/domain/series"
)

// CreateSeriesInput carries input for the create series orchestrator.
type CreateSeriesInput struct {
	Name        string
	Description string
	StartDate   time.Time
	Rewards     []int
	CreatedBy   string // email of the creator
}

// CreateSeriesDeps holds dependencies for CreateSeries.
type CreateSeriesDeps struct {
	SeriesStore SeriesStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCreateSeries creates a new active series owned by the caller.
// PRE: Name and CreatedBy must be non-empty; StartDate must be set
// POST: Series created active and not completed, with generated ID
func ExecuteCreateSeries(ctx context.Context, input CreateSeriesInput, deps CreateSeriesDeps) (series.Series, error) {
	if strings.TrimSpace(input.CreatedBy) == "" {
		return series.Series{}, ErrUnauthenticated
	}

	s := series.Series{
		ID:          deps.GenerateID(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		StartDate:   input.StartDate,
		IsActive:    true,
		Completed:   false,
		CreatedBy:   strings.TrimSpace(input.CreatedBy),
		Managers:    []string{},
		Rewards:     []int{},
		CreatedAt:   deps.Now(),
	}
	s.SetRewards(input.Rewards)

	if err := s.Validate(); err != nil {
		return series.Series{}, err
	}

	if err := deps.SeriesStore.Save(ctx, s); err != nil {
		return series.Series{}, err
	}

	slog.Info("series_event", "event", "series_created", "series_id", s.ID, "name", s.Name, "created_by", s.CreatedBy)
	return s, nil
}
