package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "passport/internal/adapters/email"
	web "passport/internal/adapters/http"
	"passport/internal/adapters/storage"
	accountStore "passport/internal/adapters/storage/account"
	attendanceStore "passport/internal/adapters/storage/attendance"
	outboxStorePkg "passport/internal/adapters/storage/outbox"
	participantStore "passport/internal/adapters/storage/participant"
	seriesStorePkg "passport/internal/adapters/storage/series"
	sessionStorePkg "passport/internal/adapters/storage/session"
	"passport/internal/application/orchestrators"
	"passport/internal/domain/authz"
	"passport/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// WAL mode, foreign keys, and a busy timeout keep concurrent check-in
	// writes from tripping over reads.
	dbPath := envOrDefault("PASSPORT_DB", "passport.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Wrap DB with slow-query instrumentation
	timedDB := storage.NewTimedDB(db)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:     acctStore,
		SeriesStore:      seriesStorePkg.NewSQLiteStore(timedDB),
		SessionStore:     sessionStorePkg.NewSQLiteStore(timedDB),
		AttendanceStore:  attendanceStore.NewSQLiteStore(timedDB),
		ParticipantStore: participantStore.NewSQLiteStore(timedDB),
		OutboxStore:      outboxStorePkg.NewSQLiteStore(timedDB),
	}

	// Admin allow-set from configuration; admin rights never live in the DB.
	gate := authz.NewGate(splitList(os.Getenv("PASSPORT_ADMIN_EMAILS")))

	// Seed an admin login if no accounts exist yet
	adminEmail := envOrDefault("PASSPORT_ADMIN_EMAIL", "admin@passport.local")
	adminPassword := envOrDefault("PASSPORT_ADMIN_PASSWORD", "change me before launch")
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender for manager invite notifications
	resendKey := os.Getenv("PASSPORT_RESEND_KEY")
	emailFrom := envOrDefault("PASSPORT_RESEND_FROM", "Passport <noreply@passport.local>")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("PASSPORT_ENV") == "production" {
			log.Println("WARNING: PASSPORT_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set PASSPORT_RESEND_KEY for real delivery)")
		}
	}
	web.SetEmailSender(sender)

	// Background worker retries queued manager-invite emails
	outboxStopCh := make(chan struct{})
	outboxProcessor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeManagerInvite: &orchestrators.ManagerInviteExecutor{Sender: sender},
	})
	orchestrators.StartBackgroundWorker(outboxProcessor, 1*time.Minute, outboxStopCh)
	defer close(outboxStopCh)

	mux := web.NewMux("static", stores, web.Config{
		Gate:        gate,
		AllowRepeat: os.Getenv("PASSPORT_ALLOW_REPEAT_CHECKINS") == "true",
	})

	addr := envOrDefault("PASSPORT_ADDR", ":8080")
	log.Printf("Passport %s starting on %s (env=%s)", version, addr, envOrDefault("PASSPORT_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
