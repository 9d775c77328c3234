package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"passport/internal/adapters/http/middleware"
	"passport/internal/application/orchestrators"
	"passport/internal/application/projections"
	"passport/internal/domain/participant"
	"passport/internal/domain/series"
	"passport/internal/domain/session"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// renderMarkdown converts markdown to sanitized HTML.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// validationErrors are domain rejections the client can fix; they map to 400.
var validationErrors = []error{
	series.ErrEmptyName,
	series.ErrEmptyOwner,
	series.ErrNoStartDate,
	series.ErrNotEditable,
	series.ErrNotCreatable,
	session.ErrEmptySeriesID,
	session.ErrNoWindow,
	session.ErrWindowOrder,
	participant.ErrEmptyID,
	participant.ErrEmptyNickname,
	participant.ErrNicknameLong,
}

// writeDomainError maps orchestrator and projection errors onto HTTP status
// codes. Anything unrecognized is treated as an internal failure.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orchestrators.ErrUnauthenticated):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, orchestrators.ErrForbidden), errors.Is(err, projections.ErrNotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, orchestrators.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, orchestrators.ErrSeriesClosed),
		errors.Is(err, orchestrators.ErrWindowNotOpen),
		errors.Is(err, orchestrators.ErrAlreadyCheckedIn):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, orchestrators.ErrInvalidToken):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		for _, known := range validationErrors {
			if errors.Is(err, known) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		internalError(w, err)
	}
}

// parseInstant parses an RFC3339 timestamp; empty input yields a zero time.
func parseInstant(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

// parseDay parses a calendar date, accepting a bare day or a full timestamp.
func parseDay(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// registerRoutes wires every API route onto the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.HandleFunc("POST /api/account/password", handleChangePassword)

	mux.HandleFunc("GET /api/series", handleListSeries)
	mux.HandleFunc("POST /api/series", handleCreateSeries)
	mux.HandleFunc("GET /api/series/{id}", handleSeriesDetail)
	mux.HandleFunc("POST /api/series/{id}/status", handleUpdateSeriesStatus)
	mux.HandleFunc("POST /api/series/{id}/details", handleUpdateSeriesDetails)
	mux.HandleFunc("POST /api/series/{id}/rewards", handleUpdateSeriesRewards)
	mux.HandleFunc("POST /api/series/{id}/managers", handleAddManager)
	mux.HandleFunc("DELETE /api/series/{id}/managers/{email}", handleRemoveManager)
	mux.HandleFunc("POST /api/series/{id}/sessions", handleCreateSession)
	mux.HandleFunc("POST /api/series/{id}/sessions/recurring", handleCreateRecurringSessions)
	mux.HandleFunc("GET /api/series/{id}/leaderboard", handleLeaderboard)
	mux.HandleFunc("GET /api/series/{id}/attendance", handleSeriesAttendance)
	mux.HandleFunc("GET /api/series/{id}/attendance.csv", handleSeriesAttendanceCSV)
	mux.HandleFunc("PATCH /api/series/{id}/participants/{participantId}", handleUpdateNickname)

	mux.HandleFunc("GET /api/sessions/recent", handleRecentSessions)
	mux.HandleFunc("GET /api/sessions/{id}", handleSessionDetail)
	mux.HandleFunc("DELETE /api/sessions/{id}", handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/attendance", handleSessionAttendees)

	mux.HandleFunc("POST /api/checkin", handleScanCheckin)
	mux.HandleFunc("GET /api/participants/{id}/passport", handleParticipantPassport)

	mux.HandleFunc("GET /api/admin/outbox", handleAdminOutboxList)
	mux.HandleFunc("POST /api/admin/outbox/{id}/{action}", handleAdminOutboxAction)
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		internalError(w, err)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	writeJSON(w, map[string]any{
		"email":   result.Email,
		"isAdmin": gate.IsAdmin(result.Email),
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("passport_session"); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleChangePassword handles POST /api/account/password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListSeries handles GET /api/series
func handleListSeries(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetSeriesList(r.Context(), projections.GetSeriesListQuery{
		Email: middleware.SessionEmail(r.Context()),
	}, projections.GetSeriesListDeps{
		SeriesStore:  stores.SeriesStore,
		SessionStore: stores.SessionStore,
		Gate:         gate,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleCreateSeries handles POST /api/series
func handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	email := middleware.SessionEmail(r.Context())
	if email == "" {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		StartDate   string `json:"startDate"`
		Rewards     []int  `json:"rewards"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	startDate, err := parseDay(input.StartDate)
	if err != nil {
		http.Error(w, "invalid start date", http.StatusBadRequest)
		return
	}

	s, err := orchestrators.ExecuteCreateSeries(r.Context(), orchestrators.CreateSeriesInput{
		Name:        input.Name,
		Description: input.Description,
		StartDate:   startDate,
		Rewards:     input.Rewards,
		CreatedBy:   email,
	}, orchestrators.CreateSeriesDeps{
		SeriesStore: stores.SeriesStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, s)
}

// handleSeriesDetail handles GET /api/series/{id}
func handleSeriesDetail(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetSeriesDetail(r.Context(), projections.GetSeriesDetailQuery{
		SeriesID: r.PathValue("id"),
		Email:    middleware.SessionEmail(r.Context()),
	}, projections.GetSeriesDetailDeps{
		SeriesStore:     stores.SeriesStore,
		SessionStore:    stores.SessionStore,
		AttendanceStore: stores.AttendanceStore,
		Gate:            gate,
		Now:             timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, struct {
		projections.GetSeriesDetailResult
		DescriptionHTML string
	}{result, renderMarkdown(result.Description)})
}

// handleUpdateSeriesStatus handles POST /api/series/{id}/status
func handleUpdateSeriesStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IsActive  bool `json:"isActive"`
		Completed bool `json:"completed"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s, err := orchestrators.ExecuteUpdateSeriesStatus(r.Context(), orchestrators.UpdateSeriesStatusInput{
		SeriesID:  r.PathValue("id"),
		Email:     middleware.SessionEmail(r.Context()),
		IsActive:  input.IsActive,
		Completed: input.Completed,
	}, seriesUpdateDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, s)
}

// handleUpdateSeriesDetails handles POST /api/series/{id}/details
func handleUpdateSeriesDetails(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		StartDate   string  `json:"startDate"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	var startDate time.Time
	if input.StartDate != "" {
		var err error
		if startDate, err = parseDay(input.StartDate); err != nil {
			http.Error(w, "invalid start date", http.StatusBadRequest)
			return
		}
	}

	orchInput := orchestrators.UpdateSeriesDetailsInput{
		SeriesID:  r.PathValue("id"),
		Email:     middleware.SessionEmail(r.Context()),
		Name:      input.Name,
		StartDate: startDate,
	}
	if input.Description != nil {
		orchInput.Description = *input.Description
		orchInput.HasDesc = true
	}

	s, err := orchestrators.ExecuteUpdateSeriesDetails(r.Context(), orchInput, seriesUpdateDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, s)
}

// handleUpdateSeriesRewards handles POST /api/series/{id}/rewards
func handleUpdateSeriesRewards(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Rewards []int `json:"rewards"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s, err := orchestrators.ExecuteUpdateSeriesRewards(r.Context(), orchestrators.UpdateSeriesRewardsInput{
		SeriesID: r.PathValue("id"),
		Email:    middleware.SessionEmail(r.Context()),
		Rewards:  input.Rewards,
	}, seriesUpdateDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, s)
}

func seriesUpdateDeps() orchestrators.UpdateSeriesDeps {
	return orchestrators.UpdateSeriesDeps{
		SeriesStore: stores.SeriesStore,
		Gate:        gate,
	}
}

// handleAddManager handles POST /api/series/{id}/managers
func handleAddManager(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s, err := orchestrators.ExecuteAddManager(r.Context(), orchestrators.AddManagerInput{
		SeriesID: r.PathValue("id"),
		Email:    middleware.SessionEmail(r.Context()),
		Manager:  input.Email,
	}, orchestrators.AddManagerDeps{
		SeriesStore: stores.SeriesStore,
		OutboxStore: stores.OutboxStore,
		Gate:        gate,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"managers": s.Managers})
}

// handleRemoveManager handles DELETE /api/series/{id}/managers/{email}
func handleRemoveManager(w http.ResponseWriter, r *http.Request) {
	s, err := orchestrators.ExecuteRemoveManager(r.Context(), orchestrators.RemoveManagerInput{
		SeriesID: r.PathValue("id"),
		Email:    middleware.SessionEmail(r.Context()),
		Manager:  r.PathValue("email"),
	}, orchestrators.RemoveManagerDeps{
		SeriesStore: stores.SeriesStore,
		Gate:        gate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"managers": s.Managers})
}

func sessionCreateDeps() orchestrators.CreateSessionDeps {
	return orchestrators.CreateSessionDeps{
		SeriesStore:   stores.SeriesStore,
		SessionStore:  stores.SessionStore,
		Gate:          gate,
		GenerateID:    generateID,
		GenerateToken: session.NewToken,
		Now:           timeNow,
	}
}

// handleCreateSession handles POST /api/series/{id}/sessions
func handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var input struct {
		StartAt        string `json:"startAt"`
		CheckinOpenAt  string `json:"checkinOpenAt"`
		CheckinCloseAt string `json:"checkinCloseAt"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	startAt, err := parseInstant(input.StartAt)
	if err != nil {
		http.Error(w, "invalid start time", http.StatusBadRequest)
		return
	}
	openAt, err := parseInstant(input.CheckinOpenAt)
	if err != nil {
		http.Error(w, "invalid check-in open time", http.StatusBadRequest)
		return
	}
	closeAt, err := parseInstant(input.CheckinCloseAt)
	if err != nil {
		http.Error(w, "invalid check-in close time", http.StatusBadRequest)
		return
	}

	sess, err := orchestrators.ExecuteCreateSession(r.Context(), orchestrators.CreateSessionInput{
		SeriesID:       r.PathValue("id"),
		Email:          middleware.SessionEmail(r.Context()),
		StartAt:        startAt,
		CheckinOpenAt:  openAt,
		CheckinCloseAt: closeAt,
	}, sessionCreateDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, sess)
}

// handleCreateRecurringSessions handles POST /api/series/{id}/sessions/recurring
func handleCreateRecurringSessions(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FirstDate       string `json:"firstDate"`
		OpenTime        string `json:"openTime"`
		CloseTime       string `json:"closeTime"`
		IntervalDays    int    `json:"intervalDays"`
		RepeatCount     int    `json:"repeatCount"`
		TZOffsetMinutes int    `json:"tzOffsetMinutes"`
		Removed         []int  `json:"removed"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	removed := make(map[int]bool, len(input.Removed))
	for _, idx := range input.Removed {
		removed[idx] = true
	}

	created, err := orchestrators.ExecuteCreateRecurringSessions(r.Context(), orchestrators.CreateRecurringSessionsInput{
		SeriesID: r.PathValue("id"),
		Email:    middleware.SessionEmail(r.Context()),
		Recurrence: session.Recurrence{
			FirstDate:       input.FirstDate,
			OpenTime:        input.OpenTime,
			CloseTime:       input.CloseTime,
			IntervalDays:    input.IntervalDays,
			RepeatCount:     input.RepeatCount,
			TZOffsetMinutes: input.TZOffsetMinutes,
			Removed:         removed,
		},
	}, sessionCreateDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{"created": len(created), "sessions": created})
}

// handleRecentSessions handles GET /api/sessions/recent (admin only)
func handleRecentSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	result, err := projections.QueryGetRecentSessions(r.Context(), projections.GetRecentSessionsQuery{
		Email: middleware.SessionEmail(r.Context()),
		Limit: limit,
	}, projections.GetRecentSessionsDeps{
		SessionStore: stores.SessionStore,
		SeriesStore:  stores.SeriesStore,
		Gate:         gate,
		Now:          timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleSessionDetail handles GET /api/sessions/{id}
// Public: this is the TV-mode feed. The projection redacts the token once
// the window closes.
func handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetSessionDetail(r.Context(), projections.GetSessionDetailQuery{
		SessionID: r.PathValue("id"),
	}, projections.GetSessionDetailDeps{
		SessionStore:    stores.SessionStore,
		SeriesStore:     stores.SeriesStore,
		AttendanceStore: stores.AttendanceStore,
		Now:             timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleDeleteSession handles DELETE /api/sessions/{id}
func handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	sess, err := stores.SessionStore.GetByID(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	err = orchestrators.ExecuteDeleteSession(r.Context(), orchestrators.DeleteSessionInput{
		SeriesID:  sess.SeriesID,
		SessionID: sessionID,
		Email:     middleware.SessionEmail(r.Context()),
	}, orchestrators.DeleteSessionDeps{
		SeriesStore:     stores.SeriesStore,
		SessionStore:    stores.SessionStore,
		AttendanceStore: stores.AttendanceStore,
		Gate:            gate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionAttendees handles GET /api/sessions/{id}/attendance
func handleSessionAttendees(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetSessionAttendees(r.Context(), projections.GetSessionAttendeesQuery{
		SessionID: r.PathValue("id"),
		Email:     middleware.SessionEmail(r.Context()),
	}, projections.GetSessionAttendeesDeps{
		SessionStore:     stores.SessionStore,
		SeriesStore:      stores.SeriesStore,
		AttendanceStore:  stores.AttendanceStore,
		ParticipantStore: stores.ParticipantStore,
		Gate:             gate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleLeaderboard handles GET /api/series/{id}/leaderboard
// Public: the board shows display names and counts, never tokens.
func handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetLeaderboard(r.Context(), projections.GetLeaderboardQuery{
		SeriesID: r.PathValue("id"),
	}, projections.GetLeaderboardDeps{
		SeriesStore:      stores.SeriesStore,
		AttendanceStore:  stores.AttendanceStore,
		ParticipantStore: stores.ParticipantStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleSeriesAttendance handles GET /api/series/{id}/attendance
func handleSeriesAttendance(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetSeriesAttendance(r.Context(), projections.GetSeriesAttendanceQuery{
		SeriesID: r.PathValue("id"),
		Email:    middleware.SessionEmail(r.Context()),
	}, projections.GetSeriesAttendanceDeps{
		SeriesStore:      stores.SeriesStore,
		SessionStore:     stores.SessionStore,
		AttendanceStore:  stores.AttendanceStore,
		ParticipantStore: stores.ParticipantStore,
		Gate:             gate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleSeriesAttendanceCSV handles GET /api/series/{id}/attendance.csv
func handleSeriesAttendanceCSV(w http.ResponseWriter, r *http.Request) {
	data, err := projections.QueryExportAttendance(r.Context(), projections.ExportAttendanceQuery{
		SeriesID: r.PathValue("id"),
		Email:    middleware.SessionEmail(r.Context()),
	}, projections.ExportAttendanceDeps{
		SeriesStore:      stores.SeriesStore,
		SessionStore:     stores.SessionStore,
		AttendanceStore:  stores.AttendanceStore,
		ParticipantStore: stores.ParticipantStore,
		Gate:             gate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	w.Write(data)
}

// handleUpdateNickname handles PATCH /api/series/{id}/participants/{participantId}
// Nicknames are global to the participant; the series id scopes the rename to
// a series the caller manages.
func handleUpdateNickname(w http.ResponseWriter, r *http.Request) {
	s, err := stores.SeriesStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !gate.CanManage(middleware.SessionEmail(r.Context()), &s) {
		http.Error(w, "not authorized for this series", http.StatusForbidden)
		return
	}

	var input struct {
		Nickname string `json:"nickname"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	p, err := orchestrators.ExecuteUpdateNickname(r.Context(), orchestrators.UpdateNicknameInput{
		ParticipantID: r.PathValue("participantId"),
		Nickname:      input.Nickname,
	}, orchestrators.UpdateNicknameDeps{
		ParticipantStore: stores.ParticipantStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"participantId": p.ID, "nickname": p.Nickname})
}

// handleScanCheckin handles POST /api/checkin
// Public: the scanner posts the QR payload plus its own participant id.
func handleScanCheckin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SeriesID      string `json:"seriesId"` // present in the QR payload; session id is authoritative
		SessionID     string `json:"sessionId"`
		Token         string `json:"token"`
		ParticipantID string `json:"participantId"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteScanCheckin(r.Context(), orchestrators.ScanCheckinInput{
		SessionID:     input.SessionID,
		Token:         input.Token,
		ParticipantID: input.ParticipantID,
	}, orchestrators.ScanCheckinDeps{
		SessionStore:     stores.SessionStore,
		AttendanceStore:  stores.AttendanceStore,
		ParticipantStore: stores.ParticipantStore,
		AllowRepeat:      allowRepeatCheckins,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{
		"recordId":   result.Record.ID,
		"experience": result.Experience,
	})
}

// handleParticipantPassport handles GET /api/participants/{id}/passport
func handleParticipantPassport(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetParticipantPassport(r.Context(), projections.GetParticipantPassportQuery{
		ParticipantID: r.PathValue("id"),
	}, projections.GetParticipantPassportDeps{
		ParticipantStore: stores.ParticipantStore,
		AttendanceStore:  stores.AttendanceStore,
		SeriesStore:      stores.SeriesStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result)
}
