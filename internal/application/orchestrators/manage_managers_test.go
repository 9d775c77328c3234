package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"passport/internal/domain/outbox"
)

// mockOutboxStore implements OutboxStoreForManagers for testing.
type mockOutboxStore struct {
	entries []outbox.Entry
	failing bool
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	if m.failing {
		return errors.New("outbox db gone")
	}
	m.entries = append(m.entries, e)
	return nil
}

func addManagerDeps(store *mockSeriesStore, ob *mockOutboxStore) AddManagerDeps {
	return AddManagerDeps{
		SeriesStore: store,
		OutboxStore: ob,
		Gate:        testGate(),
		GenerateID:  testID,
		Now:         testNow,
	}
}

func TestExecuteAddManager_ByOwner(t *testing.T) {
	store := seededSeries()
	ob := &mockOutboxStore{}

	s, err := ExecuteAddManager(context.Background(), AddManagerInput{
		SeriesID: "s1",
		Email:    "owner@x.com",
		Manager:  "  New.Helper@X.com ",
	}, addManagerDeps(store, ob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"manager@x.com", "new.helper@x.com"}
	if !reflect.DeepEqual(s.Managers, want) {
		t.Errorf("managers = %v, want %v", s.Managers, want)
	}

	if len(ob.entries) != 1 {
		t.Fatalf("expected 1 outbox entry, got %d", len(ob.entries))
	}
	entry := ob.entries[0]
	if entry.ActionType != outbox.ActionTypeManagerInvite {
		t.Errorf("action type = %q", entry.ActionType)
	}
	var payload ManagerInvitePayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload.To != "new.helper@x.com" || payload.SeriesID != "s1" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestExecuteAddManager_OwnerIsNoop(t *testing.T) {
	store := seededSeries()
	ob := &mockOutboxStore{}

	s, err := ExecuteAddManager(context.Background(), AddManagerInput{
		SeriesID: "s1",
		Email:    "owner@x.com",
		Manager:  "OWNER@x.com",
	}, addManagerDeps(store, ob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.HasManager("owner@x.com") {
		t.Error("owner must never appear on the roster")
	}
	if len(ob.entries) != 0 {
		t.Errorf("no email should be queued for a no-op grant, got %d", len(ob.entries))
	}
}

func TestExecuteAddManager_DuplicateNoEmail(t *testing.T) {
	store := seededSeries()
	ob := &mockOutboxStore{}

	_, err := ExecuteAddManager(context.Background(), AddManagerInput{
		SeriesID: "s1",
		Email:    "owner@x.com",
		Manager:  "manager@x.com",
	}, addManagerDeps(store, ob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ob.entries) != 0 {
		t.Errorf("duplicate grant should not queue an email, got %d entries", len(ob.entries))
	}
}

// Managers may run sessions but not change the roster.
func TestExecuteAddManager_ManagerForbidden(t *testing.T) {
	_, err := ExecuteAddManager(context.Background(), AddManagerInput{
		SeriesID: "s1",
		Email:    "manager@x.com",
		Manager:  "friend@x.com",
	}, addManagerDeps(seededSeries(), &mockOutboxStore{}))
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestExecuteAddManager_AdminAllowed(t *testing.T) {
	_, err := ExecuteAddManager(context.Background(), AddManagerInput{
		SeriesID: "s1",
		Email:    "admin@x.com",
		Manager:  "friend@x.com",
	}, addManagerDeps(seededSeries(), &mockOutboxStore{}))
	if err != nil {
		t.Fatalf("admin should edit the roster: %v", err)
	}
}

// The grant must survive an outbox write failure; the email is best-effort.
func TestExecuteAddManager_OutboxFailureDoesNotBlockGrant(t *testing.T) {
	store := seededSeries()
	ob := &mockOutboxStore{failing: true}

	s, err := ExecuteAddManager(context.Background(), AddManagerInput{
		SeriesID: "s1",
		Email:    "owner@x.com",
		Manager:  "friend@x.com",
	}, addManagerDeps(store, ob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.HasManager("friend@x.com") {
		t.Error("grant should persist despite outbox failure")
	}
}

func TestExecuteRemoveManager(t *testing.T) {
	store := seededSeries()
	s, err := ExecuteRemoveManager(context.Background(), RemoveManagerInput{
		SeriesID: "s1",
		Email:    "owner@x.com",
		Manager:  "Manager@X.com",
	}, RemoveManagerDeps{SeriesStore: store, Gate: testGate()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Managers) != 0 {
		t.Errorf("managers = %v, want empty", s.Managers)
	}
}

func TestExecuteRemoveManager_UnknownIsNoop(t *testing.T) {
	store := seededSeries()
	s, err := ExecuteRemoveManager(context.Background(), RemoveManagerInput{
		SeriesID: "s1",
		Email:    "owner@x.com",
		Manager:  "ghost@x.com",
	}, RemoveManagerDeps{SeriesStore: store, Gate: testGate()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s.Managers, []string{"manager@x.com"}) {
		t.Errorf("managers = %v", s.Managers)
	}
}
