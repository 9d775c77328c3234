package participant

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"passport/internal/adapters/storage"
	domain "passport/internal/domain/participant"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new participant store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Participant by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Participant, error) {
	query := "SELECT id, nickname, experience FROM participant WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	var entity domain.Participant
	err := row.Scan(&entity.ID, &entity.Nickname, &entity.Experience)
	if err == sql.ErrNoRows {
		return domain.Participant{}, fmt.Errorf("participant not found: %w", err)
	}
	return entity, err
}

// Save persists a Participant to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO participant (id, nickname, experience) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET nickname=excluded.nickname, experience=excluded.experience`

	if _, err = tx.ExecContext(ctx, query, entity.ID, entity.Nickname, entity.Experience); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Participant from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM participant WHERE id = ?", id)
	return err
}

// GetByIDs retrieves participants for the given ids, keyed by id.
// Missing ids are simply absent from the result.
func (s *SQLiteStore) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Participant, error) {
	result := make(map[string]domain.Participant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		"SELECT id, nickname, experience FROM participant WHERE id IN (%s)",
		strings.Join(placeholders, ","),
	)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entity domain.Participant
		if err := rows.Scan(&entity.ID, &entity.Nickname, &entity.Experience); err != nil {
			return nil, err
		}
		result[entity.ID] = entity
	}
	return result, rows.Err()
}
