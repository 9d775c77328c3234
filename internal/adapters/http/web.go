package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"passport/internal/adapters/email"
	"passport/internal/adapters/http/middleware"
	accountStore "passport/internal/adapters/storage/account"
	attendanceStore "passport/internal/adapters/storage/attendance"
	outboxStore "passport/internal/adapters/storage/outbox"
	participantStore "passport/internal/adapters/storage/participant"
	seriesStore "passport/internal/adapters/storage/series"
	sessionStore "passport/internal/adapters/storage/session"
	"passport/internal/domain/authz"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	SeriesStore      seriesStore.Store
	SessionStore     sessionStore.Store
	AttendanceStore  attendanceStore.Store
	ParticipantStore participantStore.Store
	OutboxStore      outboxStore.Store
}

// Config carries the non-store wiring for the HTTP layer.
type Config struct {
	Gate        *authz.Gate
	AllowRepeat bool // allow repeat check-ins for the same session
}

// loadCSRFKey reads the CSRF secret from PASSPORT_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("PASSPORT_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("PASSPORT_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("PASSPORT_ENV") == "production" {
		log.Fatal("PASSPORT_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set PASSPORT_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global authorization gate and check-in policy (set by NewMux)
var gate *authz.Gate
var allowRepeatCheckins bool

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, cfg Config) http.Handler {
	stores = s
	gate = cfg.Gate
	allowRepeatCheckins = cfg.AllowRepeat
	sessions = middleware.NewSessionStore()

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(),
	)
}
