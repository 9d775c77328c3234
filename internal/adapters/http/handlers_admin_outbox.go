package web

import (
	"net/http"
	"strconv"

	"passport/internal/adapters/http/middleware"
	"passport/internal/application/orchestrators"
	"passport/internal/domain/outbox"
)

// requireAdmin resolves the caller's email and checks it against the admin
// allow-set. Returns the email and false when the response has been written.
func requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := middleware.SessionEmail(r.Context())
	if email == "" {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return "", false
	}
	if !gate.IsAdmin(email) {
		http.Error(w, "admin required", http.StatusForbidden)
		return "", false
	}
	return email, true
}

// handleAdminOutboxList handles GET /api/admin/outbox
// Lists failed entries by default; ?status=pending lists the live queue.
func handleAdminOutboxList(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	var entries []outbox.Entry
	var err error
	if r.URL.Query().Get("status") == outbox.StatusPending {
		entries, err = stores.OutboxStore.ListPending(ctx, limit)
	} else {
		entries, err = stores.OutboxStore.ListFailed(ctx, limit)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, entries)
}

// handleAdminOutboxAction handles POST /api/admin/outbox/{id}/{action}
// Supported actions: retry (re-run the entry now), abandon (stop retrying).
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()
	entryID := r.PathValue("id")

	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeManagerInvite: &orchestrators.ManagerInviteExecutor{Sender: emailSender},
	})

	switch r.PathValue("action") {
	case "retry":
		if err := processor.ProcessSingle(ctx, entryID); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"status": "retry triggered"})

	case "abandon":
		if err := processor.AbandonEntry(ctx, entryID); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"status": "abandoned"})

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}
