package sqlite

import (
	"context"
	"fmt"

	"github.com/alibiapp/alibi-server/internal/domain"
	"github.com/alibiapp/alibi-server/internal/store"
)

// CreateFavorite inserts a favorite row. INSERT OR IGNORE against the
// (excuse_id, device_id) unique index makes concurrent double-submission
// collapse into a single row; created reports whether this call inserted it.
func (s *Store) CreateFavorite(ctx context.Context, favorite *domain.Favorite) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO favorites (id, excuse_id, device_id, created_at)
		VALUES (?, ?, ?, ?)`,
		favorite.ID,
		favorite.ExcuseID,
		favorite.DeviceID,
		favorite.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return false, fmt.Errorf("insert favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert favorite: %w", err)
	}
	return affected > 0, nil
}

// DeleteFavorite removes a favorite by ID, scoped to the owning device so one
// device cannot delete another device's rows.
func (s *Store) DeleteFavorite(ctx context.Context, id, deviceID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE id = ? AND device_id = ?`, id, deviceID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if affected == 0 {
		return store.ErrFavoriteNotFound
	}
	return nil
}

// ListFavorites returns a device's favorites newest first, joined with the
// excuse row and its current average rating.
func (s *Store) ListFavorites(ctx context.Context, deviceID string) ([]*domain.FavoriteWithExcuse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.excuse_id, f.device_id, f.created_at,
		       e.excuse, e.situation, e.tone, e.length, e.believability_rating,
		       COALESCE(r.avg_rating, 0)
		FROM favorites f
		JOIN excuses e ON e.id = f.excuse_id
		LEFT JOIN (
			SELECT excuse_id, AVG(rating) AS avg_rating
			FROM excuse_ratings GROUP BY excuse_id
		) r ON r.excuse_id = f.excuse_id
		WHERE f.device_id = ?
		ORDER BY f.created_at DESC`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var out []*domain.FavoriteWithExcuse
	for rows.Next() {
		var f domain.FavoriteWithExcuse
		var createdAt string

		err := rows.Scan(
			&f.ID,
			&f.ExcuseID,
			&f.DeviceID,
			&createdAt,
			&f.Excuse,
			&f.Situation,
			&f.Tone,
			&f.Length,
			&f.BelievabilityRating,
			&f.AverageRating,
		)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}

		if f.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// CountFavorites counts a device's favorites.
func (s *Store) CountFavorites(ctx context.Context, deviceID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites WHERE device_id = ?`, deviceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return count, nil
}

// ClearFavorites deletes all of a device's favorites and returns the count.
func (s *Store) ClearFavorites(ctx context.Context, deviceID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE device_id = ?`, deviceID)
	if err != nil {
		return 0, fmt.Errorf("clear favorites: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear favorites: %w", err)
	}
	return int(affected), nil
}
