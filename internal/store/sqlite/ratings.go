package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alibiapp/alibi-server/internal/domain"
)

// CreateRating appends a rating row. Multiple ratings from the same device
// are allowed; the aggregate is a plain mean over all rows.
func (s *Store) CreateRating(ctx context.Context, rating *domain.Rating) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO excuse_ratings (id, excuse_id, rating, created_at)
		VALUES (?, ?, ?, ?)`,
		rating.ID,
		rating.ExcuseID,
		rating.Rating,
		rating.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

// GetRatingSummary returns the mean and count over all ratings for an excuse.
// Both are zero when the excuse has no ratings.
func (s *Store) GetRatingSummary(ctx context.Context, excuseID string) (domain.RatingSummary, error) {
	var avg sql.NullFloat64
	var total int

	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(rating), COUNT(*)
		FROM excuse_ratings
		WHERE excuse_id = ?`, excuseID).Scan(&avg, &total)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("rating summary: %w", err)
	}

	summary := domain.RatingSummary{TotalRatings: total}
	if avg.Valid {
		summary.AverageRating = avg.Float64
	}
	return summary, nil
}

// ListTopRated returns excuses ordered by average rating descending, joined
// with their rating aggregate and share count. Unrated excuses sort last;
// tie order among equal averages is unspecified.
func (s *Store) ListTopRated(ctx context.Context, limit int) ([]*domain.TopRatedExcuse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.situation, e.tone, e.length, e.excuse, e.believability_rating, e.created_at,
		       COALESCE(r.avg_rating, 0), COALESCE(r.total, 0), COALESCE(sh.total, 0)
		FROM excuses e
		LEFT JOIN (
			SELECT excuse_id, AVG(rating) AS avg_rating, COUNT(*) AS total
			FROM excuse_ratings GROUP BY excuse_id
		) r ON r.excuse_id = e.id
		LEFT JOIN (
			SELECT excuse_id, COUNT(*) AS total
			FROM excuse_shares GROUP BY excuse_id
		) sh ON sh.excuse_id = e.id
		ORDER BY COALESCE(r.avg_rating, 0) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list top rated: %w", err)
	}
	defer rows.Close()

	var out []*domain.TopRatedExcuse
	for rows.Next() {
		var t domain.TopRatedExcuse
		var createdAt string

		err := rows.Scan(
			&t.ID,
			&t.Situation,
			&t.Tone,
			&t.Length,
			&t.Excuse.Excuse,
			&t.BelievabilityRating,
			&createdAt,
			&t.AverageRating,
			&t.TotalRatings,
			&t.ShareCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan top rated: %w", err)
		}

		if t.Excuse.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
