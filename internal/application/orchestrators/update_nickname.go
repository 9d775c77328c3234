package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"passport/internal/domain/participant"
)

// UpdateNicknameInput carries input for the nickname orchestrator.
type UpdateNicknameInput struct {
	ParticipantID string
	Nickname      string
}

// UpdateNicknameDeps holds dependencies for UpdateNickname.
type UpdateNicknameDeps struct {
	ParticipantStore ParticipantStoreForCheckin
}

// ExecuteUpdateNickname sets the leaderboard display name for a participant.
// A participant that has never checked in is created with zero experience so
// they can name themselves before their first scan.
// PRE: ParticipantID is non-empty; Nickname is non-empty after trimming
// POST: Participant persisted with the new nickname
func ExecuteUpdateNickname(ctx context.Context, input UpdateNicknameInput, deps UpdateNicknameDeps) (participant.Participant, error) {
	id := strings.TrimSpace(input.ParticipantID)
	if id == "" {
		return participant.Participant{}, participant.ErrEmptyID
	}

	p, err := deps.ParticipantStore.GetByID(ctx, id)
	if err != nil {
		p = participant.Participant{ID: id}
	}

	if err := p.SetNickname(input.Nickname); err != nil {
		return participant.Participant{}, err
	}

	if err := deps.ParticipantStore.Save(ctx, p); err != nil {
		return participant.Participant{}, err
	}

	slog.Info("checkin_event", "event", "nickname_updated", "participant_id", id)
	return p, nil
}
