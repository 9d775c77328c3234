package projections

import (
	"context"
	"strings"
	"time"

	"passport/internal/domain/authz"
)

// GetSeriesListQuery carries query parameters.
type GetSeriesListQuery struct {
	Email string // viewer, empty means anonymous
}

// SeriesListItem is one row on the series index.
type SeriesListItem struct {
	ID           string
	Name         string
	StartDate    time.Time
	IsActive     bool
	Completed    bool
	IsOwner      bool
	CanManage    bool
	SessionCount int
}

// GetSeriesListResult carries the query result.
type GetSeriesListResult struct {
	Items []SeriesListItem
}

// GetSeriesListDeps holds dependencies for GetSeriesList.
type GetSeriesListDeps struct {
	SeriesStore  SeriesReader
	SessionStore SessionReader
	Gate         *authz.Gate
}

// QueryGetSeriesList returns the series visible to the viewer: admins see
// everything, everyone else sees only series they own or manage.
// PRE: deps.Gate is non-nil
// POST: Items contains no series the viewer cannot view
func QueryGetSeriesList(ctx context.Context, query GetSeriesListQuery, deps GetSeriesListDeps) (GetSeriesListResult, error) {
	all, err := deps.SeriesStore.ListAll(ctx)
	if err != nil {
		return GetSeriesListResult{}, err
	}

	result := GetSeriesListResult{Items: []SeriesListItem{}}
	for i := range all {
		s := &all[i]
		if !deps.Gate.CanView(query.Email, s) {
			continue
		}
		count, err := deps.SessionStore.CountBySeriesID(ctx, s.ID)
		if err != nil {
			return GetSeriesListResult{}, err
		}
		result.Items = append(result.Items, SeriesListItem{
			ID:           s.ID,
			Name:         s.Name,
			StartDate:    s.StartDate,
			IsActive:     s.IsActive,
			Completed:    s.Completed,
			IsOwner:      strings.ToLower(strings.TrimSpace(query.Email)) == s.Owner(),
			CanManage:    deps.Gate.CanManage(query.Email, s),
			SessionCount: count,
		})
	}
	return result, nil
}
