package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"passport/internal/adapters/email"
	"passport/internal/domain/outbox"
)

// mockFullOutboxStore implements the outbox storage Store interface for testing.
type mockFullOutboxStore struct {
	entries map[string]outbox.Entry
}

func (m *mockFullOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, errors.New("not found")
	}
	return e, nil
}

func (m *mockFullOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mockFullOutboxStore) Delete(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

func (m *mockFullOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var result []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			result = append(result, e)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockFullOutboxStore) ListFailed(_ context.Context, limit int) ([]outbox.Entry, error) {
	var result []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusFailed && e.Attempts >= e.MaxAttempts {
			result = append(result, e)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// stubExecutor returns a fixed result or error.
type stubExecutor struct {
	externalID string
	err        error
	calls      int
}

func (s *stubExecutor) Execute(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.externalID, s.err
}

func pendingEntry(id string) outbox.Entry {
	return outbox.Entry{
		ID:          id,
		ActionType:  outbox.ActionTypeManagerInvite,
		Payload:     `{"to":"m@x.com","seriesId":"s1","seriesName":"Circle","grantedBy":"owner@x.com"}`,
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   time.Now().Add(-time.Minute),
	}
}

func TestOutboxProcessor_Success(t *testing.T) {
	store := &mockFullOutboxStore{entries: map[string]outbox.Entry{"e1": pendingEntry("e1")}}
	exec := &stubExecutor{externalID: "msg-123"}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{outbox.ActionTypeManagerInvite: exec})

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := store.entries["e1"]
	if e.Status != outbox.StatusDone {
		t.Errorf("status = %q, want done", e.Status)
	}
	if e.ExternalID != "msg-123" {
		t.Errorf("external id = %q", e.ExternalID)
	}
	if exec.calls != 1 {
		t.Errorf("executor calls = %d, want 1", exec.calls)
	}
}

func TestOutboxProcessor_FailureRecorded(t *testing.T) {
	store := &mockFullOutboxStore{entries: map[string]outbox.Entry{"e1": pendingEntry("e1")}}
	exec := &stubExecutor{err: errors.New("provider down")}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{outbox.ActionTypeManagerInvite: exec})

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := store.entries["e1"]
	if e.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", e.Attempts)
	}
	if e.ErrorMessage != "provider down" {
		t.Errorf("error message = %q", e.ErrorMessage)
	}
	if e.IsTerminal() {
		t.Error("entry should still be retryable")
	}
}

func TestOutboxProcessor_BackoffSkipsFreshAttempt(t *testing.T) {
	e := pendingEntry("e1")
	e.Status = outbox.StatusRetrying
	e.Attempts = 2
	e.LastAttemptedAt = time.Now() // just attempted
	store := &mockFullOutboxStore{entries: map[string]outbox.Entry{"e1": e}}
	exec := &stubExecutor{externalID: "msg"}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{outbox.ActionTypeManagerInvite: exec})

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.calls != 0 {
		t.Errorf("executor should not run inside the backoff window, calls = %d", exec.calls)
	}
}

func TestOutboxProcessor_NoExecutorFails(t *testing.T) {
	store := &mockFullOutboxStore{entries: map[string]outbox.Entry{"e1": pendingEntry("e1")}}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{})

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.entries["e1"].ErrorMessage == "" {
		t.Error("missing executor should be recorded on the entry")
	}
}

func TestOutboxProcessor_ProcessSingleTerminalRejected(t *testing.T) {
	e := pendingEntry("e1")
	e.Status = outbox.StatusDone
	store := &mockFullOutboxStore{entries: map[string]outbox.Entry{"e1": e}}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{outbox.ActionTypeManagerInvite: &stubExecutor{}})

	if err := p.ProcessSingle(context.Background(), "e1"); err == nil {
		t.Error("terminal entries must not be retried")
	}
}

func TestOutboxProcessor_Abandon(t *testing.T) {
	store := &mockFullOutboxStore{entries: map[string]outbox.Entry{"e1": pendingEntry("e1")}}
	p := NewOutboxProcessor(store, nil)

	if err := p.AbandonEntry(context.Background(), "e1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.entries["e1"].Status != outbox.StatusAbandoned {
		t.Errorf("status = %q, want abandoned", store.entries["e1"].Status)
	}
}

// --- ManagerInviteExecutor ---

// recordingSender implements email.Sender for testing.
type recordingSender struct {
	requests []email.SendRequest
	err      error
}

func (r *recordingSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if r.err != nil {
		return email.SendResult{}, r.err
	}
	r.requests = append(r.requests, req)
	return email.SendResult{MessageID: "sent-1", SentAt: time.Now()}, nil
}

func TestManagerInviteExecutor_Sends(t *testing.T) {
	sender := &recordingSender{}
	exec := &ManagerInviteExecutor{Sender: sender}

	id, err := exec.Execute(context.Background(),
		`{"to":"m@x.com","seriesId":"s1","seriesName":"Circle <3","grantedBy":"owner@x.com"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "sent-1" {
		t.Errorf("external id = %q", id)
	}
	if len(sender.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(sender.requests))
	}
	req := sender.requests[0]
	if req.To[0] != "m@x.com" {
		t.Errorf("to = %v", req.To)
	}
	// Series name is escaped into the HTML body
	if want := "Circle &lt;3"; !strings.Contains(req.HTML, want) {
		t.Errorf("body %q should contain %q", req.HTML, want)
	}
}

func TestManagerInviteExecutor_BadPayload(t *testing.T) {
	exec := &ManagerInviteExecutor{Sender: &recordingSender{}}
	if _, err := exec.Execute(context.Background(), "not json"); err == nil {
		t.Error("invalid payload should error")
	}
	if _, err := exec.Execute(context.Background(), `{"seriesId":"s1"}`); err == nil {
		t.Error("missing recipient should error")
	}
}
