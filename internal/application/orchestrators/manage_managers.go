package orchestrators

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"passport/internal/domain/authz"
	"passport/internal/domain/outbox"
	"passport/internal/domain/series"
)

// OutboxStoreForManagers defines the outbox store interface needed when
// granting manager access.
type OutboxStoreForManagers interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// ManagerInvitePayload is the JSON payload queued for the notification email.
type ManagerInvitePayload struct {
	To         string `json:"to"`
	SeriesID   string `json:"seriesId"`
	SeriesName string `json:"seriesName"`
	GrantedBy  string `json:"grantedBy"`
}

// AddManagerInput carries input for the add manager orchestrator.
type AddManagerInput struct {
	SeriesID string
	Email    string // caller
	Manager  string // email to grant
}

// AddManagerDeps holds dependencies for AddManager.
type AddManagerDeps struct {
	SeriesStore SeriesStoreForOrchestrator
	OutboxStore OutboxStoreForManagers
	Gate        *authz.Gate
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteAddManager grants manager access on a series and queues a
// notification email. Granting the owner is a silent no-op; so is granting
// someone already on the roster.
// PRE: caller must be admin or the owner
// POST: roster updated; a manager_invite outbox entry exists for new grants
func ExecuteAddManager(ctx context.Context, input AddManagerInput, deps AddManagerDeps) (series.Series, error) {
	s, err := authorizeRoster(ctx, deps.SeriesStore, deps.Gate, input.Email, input.SeriesID)
	if err != nil {
		return series.Series{}, err
	}

	manager := strings.ToLower(strings.TrimSpace(input.Manager))
	if manager == "" {
		return s, nil
	}

	already := s.HasManager(manager) || manager == s.Owner()
	s.AddManager(manager)

	if err := deps.SeriesStore.Save(ctx, s); err != nil {
		return series.Series{}, err
	}

	if !already && deps.OutboxStore != nil {
		payload, err := json.Marshal(ManagerInvitePayload{
			To:         manager,
			SeriesID:   s.ID,
			SeriesName: s.Name,
			GrantedBy:  input.Email,
		})
		if err != nil {
			return series.Series{}, err
		}
		entry := outbox.Entry{
			ID:          deps.GenerateID(),
			ActionType:  outbox.ActionTypeManagerInvite,
			Payload:     string(payload),
			Status:      outbox.StatusPending,
			MaxAttempts: 5,
			CreatedAt:   deps.Now(),
		}
		if err := entry.Validate(); err != nil {
			return series.Series{}, err
		}
		// The invite email rides the outbox so a flaky provider cannot
		// break the grant itself.
		if err := deps.OutboxStore.Save(ctx, entry); err != nil {
			slog.Error("series_event", "event", "manager_invite_enqueue_failed", "series_id", s.ID, "manager", manager, "error", err)
		}
	}

	slog.Info("series_event", "event", "manager_added", "series_id", s.ID, "manager", manager, "by", input.Email)
	return s, nil
}

// RemoveManagerInput carries input for the remove manager orchestrator.
type RemoveManagerInput struct {
	SeriesID string
	Email    string // caller
	Manager  string // email to revoke
}

// RemoveManagerDeps holds dependencies for RemoveManager.
type RemoveManagerDeps struct {
	SeriesStore SeriesStoreForOrchestrator
	Gate        *authz.Gate
}

// ExecuteRemoveManager revokes manager access. Removing an email that is not
// on the roster is a no-op.
// PRE: caller must be admin or the owner
// POST: roster no longer contains the email
func ExecuteRemoveManager(ctx context.Context, input RemoveManagerInput, deps RemoveManagerDeps) (series.Series, error) {
	s, err := authorizeRoster(ctx, deps.SeriesStore, deps.Gate, input.Email, input.SeriesID)
	if err != nil {
		return series.Series{}, err
	}

	s.RemoveManager(input.Manager)

	if err := deps.SeriesStore.Save(ctx, s); err != nil {
		return series.Series{}, err
	}

	slog.Info("series_event", "event", "manager_removed", "series_id", s.ID, "manager", strings.ToLower(strings.TrimSpace(input.Manager)), "by", input.Email)
	return s, nil
}
