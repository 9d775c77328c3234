package series

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"passport/internal/adapters/storage"
	domain "passport/internal/domain/series"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new series store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const seriesColumns = "id, name, description, start_date, is_active, completed, created_by, managers, rewards, created_at"

// GetByID retrieves a Series by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Series, error) {
	query := "SELECT " + seriesColumns + " FROM series WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanSeries(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Series{}, fmt.Errorf("series not found: %w", err)
	}
	return entity, err
}

// Save persists a Series to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Series) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	managersJSON, err := json.Marshal(entity.Managers)
	if err != nil {
		return fmt.Errorf("failed to encode managers: %w", err)
	}
	rewardsJSON, err := json.Marshal(entity.Rewards)
	if err != nil {
		return fmt.Errorf("failed to encode rewards: %w", err)
	}

	// Upsert implementation
	fields := []string{"id", "name", "description", "start_date", "is_active", "completed", "created_by", "managers", "rewards", "created_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{"name=excluded.name", "description=excluded.description", "start_date=excluded.start_date", "is_active=excluded.is_active", "completed=excluded.completed", "created_by=excluded.created_by", "managers=excluded.managers", "rewards=excluded.rewards", "created_at=excluded.created_at"}

	query := fmt.Sprintf(
		"INSERT INTO series (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Description,
		entity.StartDate.Format(time.RFC3339Nano),
		boolToInt(entity.IsActive),
		boolToInt(entity.Completed),
		entity.CreatedBy,
		string(managersJSON),
		string(rewardsJSON),
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Series from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM series WHERE id = ?", id)
	return err
}

// List retrieves a page of Series ordered by creation time descending.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Series, error) {
	query := "SELECT " + seriesColumns + " FROM series ORDER BY created_at DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSeries(rows)
}

// ListAll retrieves every Series ordered by creation time descending.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Series, error) {
	query := "SELECT " + seriesColumns + " FROM series ORDER BY created_at DESC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSeries(rows)
}

func collectSeries(rows *sql.Rows) ([]domain.Series, error) {
	var results []domain.Series
	for rows.Next() {
		entity, err := scanSeries(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanSeries(scan func(...any) error) (domain.Series, error) {
	var entity domain.Series
	var startStr, createdStr, managersJSON, rewardsJSON string
	var isActive, completed int
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Description,
		&startStr,
		&isActive,
		&completed,
		&entity.CreatedBy,
		&managersJSON,
		&rewardsJSON,
		&createdStr,
	)
	if err != nil {
		return domain.Series{}, err
	}
	entity.IsActive = isActive != 0
	entity.Completed = completed != 0
	if entity.StartDate, err = storage.ParseStoredTime(startStr); err != nil {
		return domain.Series{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Series{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(managersJSON), &entity.Managers); err != nil {
		return domain.Series{}, fmt.Errorf("failed to decode managers: %w", err)
	}
	if err := json.Unmarshal([]byte(rewardsJSON), &entity.Rewards); err != nil {
		return domain.Series{}, fmt.Errorf("failed to decode rewards: %w", err)
	}
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
