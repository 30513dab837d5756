package sqlite

import (
	"context"
	"fmt"

	"github.com/alibiapp/alibi-server/internal/domain"
)

// CreateShare appends a share row. Shares only feed the top-rated counter.
func (s *Store) CreateShare(ctx context.Context, share *domain.Share) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO excuse_shares (id, excuse_id, share_method, created_at)
		VALUES (?, ?, ?, ?)`,
		share.ID,
		share.ExcuseID,
		share.ShareMethod,
		share.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}
