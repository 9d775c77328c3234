package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"passport/internal/adapters/storage"
	domain "passport/internal/domain/session"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const sessionColumns = "id, series_id, start_at, checkin_open_at, checkin_close_at, token, created_by, created_at"

// GetByID retrieves a Session by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	query := "SELECT " + sessionColumns + " FROM session WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("session not found: %w", err)
	}
	return entity, err
}

// Save persists a Session to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "series_id", "start_at", "checkin_open_at", "checkin_close_at", "token", "created_by", "created_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{"series_id=excluded.series_id", "start_at=excluded.start_at", "checkin_open_at=excluded.checkin_open_at", "checkin_close_at=excluded.checkin_close_at", "token=excluded.token", "created_by=excluded.created_by", "created_at=excluded.created_at"}

	query := fmt.Sprintf(
		"INSERT INTO session (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	// Window bounds: NULL when unset so status reads back as unknown
	var openValue, closeValue interface{}
	if !entity.CheckinOpenAt.IsZero() {
		openValue = entity.CheckinOpenAt.Format(time.RFC3339Nano)
	}
	if !entity.CheckinCloseAt.IsZero() {
		closeValue = entity.CheckinCloseAt.Format(time.RFC3339Nano)
	}

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.SeriesID,
		entity.StartAt.Format(time.RFC3339Nano),
		openValue,
		closeValue,
		entity.Token,
		entity.CreatedBy,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Session from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = ?", id)
	return err
}

// ListBySeriesID retrieves all sessions for a series, ordered by start time ascending.
// PRE: seriesID is non-empty
// POST: Returns sessions for the given series
func (s *SQLiteStore) ListBySeriesID(ctx context.Context, seriesID string) ([]domain.Session, error) {
	query := "SELECT " + sessionColumns + " FROM session WHERE series_id = ? ORDER BY start_at ASC"
	rows, err := s.db.QueryContext(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListRecent retrieves the most recently created sessions across all series.
// PRE: limit > 0
// POST: Returns up to limit sessions ordered by creation time descending
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Session, error) {
	query := "SELECT " + sessionColumns + " FROM session ORDER BY created_at DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// CountBySeriesID returns the number of sessions in a series.
func (s *SQLiteStore) CountBySeriesID(ctx context.Context, seriesID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM session WHERE series_id = ?", seriesID).Scan(&n)
	return n, err
}

func collectSessions(rows *sql.Rows) ([]domain.Session, error) {
	var results []domain.Session
	for rows.Next() {
		entity, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanSession(scan func(...any) error) (domain.Session, error) {
	var entity domain.Session
	var startStr, createdStr string
	var openStr, closeStr sql.NullString
	err := scan(
		&entity.ID,
		&entity.SeriesID,
		&startStr,
		&openStr,
		&closeStr,
		&entity.Token,
		&entity.CreatedBy,
		&createdStr,
	)
	if err != nil {
		return domain.Session{}, err
	}
	if entity.StartAt, err = storage.ParseStoredTime(startStr); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse start_at: %w", err)
	}
	if openStr.Valid {
		if entity.CheckinOpenAt, err = storage.ParseStoredTime(openStr.String); err != nil {
			return domain.Session{}, fmt.Errorf("failed to parse checkin_open_at: %w", err)
		}
	}
	if closeStr.Valid {
		if entity.CheckinCloseAt, err = storage.ParseStoredTime(closeStr.String); err != nil {
			return domain.Session{}, fmt.Errorf("failed to parse checkin_close_at: %w", err)
		}
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}
