package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"passport/internal/adapters/storage"
	domain "passport/internal/domain/attendance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const attendanceColumns = "id, series_id, session_id, participant_id, checked_in_at"

// GetByID retrieves a Record by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("attendance not found: %w", err)
	}
	return entity, err
}

// Save persists a Record to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "series_id", "session_id", "participant_id", "checked_in_at"}
	placeholders := []string{"?", "?", "?", "?", "?"}
	updates := []string{"series_id=excluded.series_id", "session_id=excluded.session_id", "participant_id=excluded.participant_id", "checked_in_at=excluded.checked_in_at"}

	query := fmt.Sprintf(
		"INSERT INTO attendance (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.SeriesID,
		entity.SessionID,
		entity.ParticipantID,
		entity.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Record from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id)
	return err
}

// ListBySeriesID retrieves all records for a series, ordered by check-in time ascending.
// PRE: seriesID is non-empty
// POST: Returns records for the given series
func (s *SQLiteStore) ListBySeriesID(ctx context.Context, seriesID string) ([]domain.Record, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE series_id = ? ORDER BY checked_in_at ASC"
	rows, err := s.db.QueryContext(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListBySessionID retrieves all records for a session, ordered by check-in time ascending.
// PRE: sessionID is non-empty
// POST: Returns records for the given session
func (s *SQLiteStore) ListBySessionID(ctx context.Context, sessionID string) ([]domain.Record, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE session_id = ? ORDER BY checked_in_at ASC"
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListByParticipantID retrieves all records for a participant, ordered by check-in time descending.
// PRE: participantID is non-empty
// POST: Returns records for the given participant
func (s *SQLiteStore) ListByParticipantID(ctx context.Context, participantID string) ([]domain.Record, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE participant_id = ? ORDER BY checked_in_at DESC"
	rows, err := s.db.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ExistsBySessionAndParticipant reports whether a participant already has a
// record for the given session.
func (s *SQLiteStore) ExistsBySessionAndParticipant(ctx context.Context, sessionID, participantID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE session_id = ? AND participant_id = ?",
		sessionID, participantID).Scan(&n)
	return n > 0, err
}

// DeleteBySessionID removes all records for a session.
// PRE: sessionID is non-empty
// POST: Returns the number of deleted records; zero when none exist
func (s *SQLiteStore) DeleteBySessionID(ctx context.Context, sessionID string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

func collectRecords(rows *sql.Rows) ([]domain.Record, error) {
	var results []domain.Record
	for rows.Next() {
		entity, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanRecord(scan func(...any) error) (domain.Record, error) {
	var entity domain.Record
	var tsStr string
	err := scan(
		&entity.ID,
		&entity.SeriesID,
		&entity.SessionID,
		&entity.ParticipantID,
		&tsStr,
	)
	if err != nil {
		return domain.Record{}, err
	}
	if entity.Timestamp, err = storage.ParseStoredTime(tsStr); err != nil {
		return domain.Record{}, fmt.Errorf("failed to parse checked_in_at: %w", err)
	}
	return entity, nil
}
