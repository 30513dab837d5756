package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alibiapp/alibi-server/internal/domain"
	"github.com/alibiapp/alibi-server/internal/store"
)

// excuseColumns is the ordered list of columns selected in excuse queries.
// Must match the scan order in scanExcuse.
const excuseColumns = `id, situation, tone, length, excuse, believability_rating, created_at`

// scanExcuse scans a sql.Row (or sql.Rows via its Scan method) into a domain.Excuse.
func scanExcuse(scanner interface{ Scan(dest ...any) error }) (*domain.Excuse, error) {
	var e domain.Excuse
	var createdAt string

	err := scanner.Scan(
		&e.ID,
		&e.Situation,
		&e.Tone,
		&e.Length,
		&e.Excuse,
		&e.BelievabilityRating,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// CreateExcuse inserts a new excuse row. Excuses are append-only.
func (s *Store) CreateExcuse(ctx context.Context, excuse *domain.Excuse) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO excuses (`+excuseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		excuse.ID,
		excuse.Situation,
		excuse.Tone,
		excuse.Length,
		excuse.Excuse,
		excuse.BelievabilityRating,
		excuse.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert excuse: %w", err)
	}
	return nil
}

// GetExcuse returns an excuse by ID.
func (s *Store) GetExcuse(ctx context.Context, id string) (*domain.Excuse, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+excuseColumns+` FROM excuses WHERE id = ?`, id)

	e, err := scanExcuse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrExcuseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get excuse: %w", err)
	}
	return e, nil
}

// ListExcuses returns all persisted excuses, oldest first. Feeds search index
// backfills after a rebuild.
func (s *Store) ListExcuses(ctx context.Context) ([]*domain.Excuse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+excuseColumns+` FROM excuses ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list excuses: %w", err)
	}
	defer rows.Close()

	var excuses []*domain.Excuse
	for rows.Next() {
		e, err := scanExcuse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan excuse: %w", err)
		}
		excuses = append(excuses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list excuses: %w", err)
	}
	return excuses, nil
}

// CountExcusesForSituation counts persisted excuses for one situation.
// This is the usageCount surfaced by the generate endpoint.
func (s *Store) CountExcusesForSituation(ctx context.Context, situation string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM excuses WHERE situation = ?`, situation).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count excuses: %w", err)
	}
	return count, nil
}
