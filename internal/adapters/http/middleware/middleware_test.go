package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// TestTiming_PassesThrough verifies timed requests reach the handler with
// the status preserved.
func TestTiming_PassesThrough(t *testing.T) {
	handler := Timing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("GET", "/missing", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// TestTiming_SkipsStatic verifies static assets bypass the timing wrapper.
func TestTiming_SkipsStatic(t *testing.T) {
	handler := Timing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestRateLimiter_BlocksAfterBurst verifies the token bucket refuses once
// the burst is spent and refills after the interval.
func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request over the burst should be blocked")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("another ip should not share the bucket")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("1.2.3.4") {
		t.Error("bucket should refill after the interval")
	}
}

// TestSessionStore_CreateGetDelete covers the cookie session lifecycle.
func TestSessionStore_CreateGetDelete(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("acc-1", "owner@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	session, ok := ss.Get(token)
	if !ok || session.Email != "owner@x.com" || session.AccountID != "acc-1" {
		t.Errorf("unexpected session: %+v ok=%v", session, ok)
	}

	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("deleted session should be gone")
	}
}

// TestSessionStore_Expiry verifies stale sessions are rejected.
func TestSessionStore_Expiry(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("acc-1", "owner@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss.mu.Lock()
	s := ss.sessions[token]
	s.CreatedAt = time.Now().Add(-25 * time.Hour)
	ss.sessions[token] = s
	ss.mu.Unlock()

	if _, ok := ss.Get(token); ok {
		t.Error("expired session should be rejected")
	}

	ss.mu.RLock()
	_, still := ss.sessions[token]
	ss.mu.RUnlock()
	if still {
		t.Error("expired session should be evicted from the store")
	}
}

// TestSessionStore_ConcurrentExpiredGets hammers Get with the same expired
// token from many goroutines; eviction must be safe under the race detector
// (a dashboard browser polls both streams with one stale cookie).
func TestSessionStore_ConcurrentExpiredGets(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("acc-1", "owner@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss.mu.Lock()
	s := ss.sessions[token]
	s.CreatedAt = time.Now().Add(-25 * time.Hour)
	ss.sessions[token] = s
	ss.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := ss.Get(token); ok {
					t.Error("expired session should never be returned")
					return
				}
			}
		}()
	}
	wg.Wait()
}

// TestAuth_PopulatesContextFromCookie verifies the middleware attaches the
// session without blocking anonymous requests.
func TestAuth_PopulatesContextFromCookie(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acc-1", "owner@x.com")

	var gotEmail string
	handler := Auth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = SessionEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/series", nil)
	req.AddCookie(&http.Cookie{Name: "passport_session", Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if gotEmail != "owner@x.com" {
		t.Errorf("expected session email in context, got %q", gotEmail)
	}

	gotEmail = "unset"
	anon := httptest.NewRequest("GET", "/api/series", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, anon)
	if gotEmail != "" {
		t.Errorf("expected empty email for anonymous request, got %q", gotEmail)
	}
}

// TestRequireAuth_RedirectsAnonymous verifies the auth wall.
func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/series", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Errorf("expected redirect, got %d", rr.Code)
	}

	authed := req.WithContext(ContextWithSession(context.Background(), Session{
		AccountID: "acc-1", Email: "owner@x.com", CreatedAt: time.Now(),
	}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, authed)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for authenticated request, got %d", rr.Code)
	}
}

// TestSecurityHeaders verifies the OWASP headers land on every response.
func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	for _, header := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(header) == "" {
			t.Errorf("missing %s header", header)
		}
	}
}
