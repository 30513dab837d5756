package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alibiapp/alibi-server/internal/domain"
	"github.com/alibiapp/alibi-server/internal/errors"
	"github.com/alibiapp/alibi-server/internal/id"
	"github.com/alibiapp/alibi-server/internal/store"
)

// MaxFavorites is the hard per-device cap. Enforced here, not in the client,
// so a stale client cannot oversave.
const MaxFavorites = 10

// FavoriteService manages per-device saved excuses.
type FavoriteService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(st store.Store, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{store: st, logger: logger}
}

// Add saves an excuse to a device's favorites. Saving an already-favorited
// excuse is idempotent and returns the existing row. A device at the cap
// gets a conflict error.
func (s *FavoriteService) Add(ctx context.Context, excuseID, deviceID string) (*domain.Favorite, error) {
	if _, err := s.store.GetExcuse(ctx, excuseID); err != nil {
		if errors.Is(err, store.ErrExcuseNotFound) {
			return nil, errors.NotFoundf("excuse %s not found", excuseID)
		}
		return nil, errors.Internal("load excuse").WithCause(err)
	}

	// Re-adding an already-saved excuse must stay idempotent even for a
	// device sitting at the cap, so the existing-row check comes first and
	// the cap only rejects genuinely new favorites.
	favorites, err := s.store.ListFavorites(ctx, deviceID)
	if err != nil {
		return nil, errors.Internal("list favorites").WithCause(err)
	}
	for _, f := range favorites {
		if f.ExcuseID == excuseID {
			return &f.Favorite, nil
		}
	}
	if len(favorites) >= MaxFavorites {
		return nil, errors.Conflict("favorites limit reached, remove one before saving another")
	}

	favorite := &domain.Favorite{
		ID:        id.MustGenerate("fav"),
		ExcuseID:  excuseID,
		DeviceID:  deviceID,
		CreatedAt: time.Now(),
	}

	created, err := s.store.CreateFavorite(ctx, favorite)
	if err != nil {
		return nil, errors.Internal("persist favorite").WithCause(err)
	}
	if !created {
		// Pair already saved; hand back the existing row.
		existing, err := s.findByExcuse(ctx, excuseID, deviceID)
		if err != nil {
			return nil, err
		}
		return existing, nil
	}

	s.logger.Info("favorite added",
		"favorite_id", favorite.ID,
		"excuse_id", excuseID,
		"device_id", deviceID,
	)
	return favorite, nil
}

// Remove deletes a favorite by ID, scoped to the owning device.
func (s *FavoriteService) Remove(ctx context.Context, favoriteID, deviceID string) error {
	if err := s.store.DeleteFavorite(ctx, favoriteID, deviceID); err != nil {
		if errors.Is(err, store.ErrFavoriteNotFound) {
			return errors.NotFoundf("favorite %s not found", favoriteID)
		}
		return errors.Internal("delete favorite").WithCause(err)
	}

	s.logger.Info("favorite removed", "favorite_id", favoriteID, "device_id", deviceID)
	return nil
}

// List returns a device's favorites, newest first, joined with excuse text.
func (s *FavoriteService) List(ctx context.Context, deviceID string) ([]*domain.FavoriteWithExcuse, error) {
	favorites, err := s.store.ListFavorites(ctx, deviceID)
	if err != nil {
		return nil, errors.Internal("list favorites").WithCause(err)
	}
	return favorites, nil
}

// ClearAll removes every favorite for a device and returns how many were removed.
func (s *FavoriteService) ClearAll(ctx context.Context, deviceID string) (int, error) {
	cleared, err := s.store.ClearFavorites(ctx, deviceID)
	if err != nil {
		return 0, errors.Internal("clear favorites").WithCause(err)
	}

	s.logger.Info("favorites cleared", "device_id", deviceID, "count", cleared)
	return cleared, nil
}

// findByExcuse locates a device's favorite row for an excuse. Only called on
// the duplicate-save path, so the listing is at most MaxFavorites rows.
func (s *FavoriteService) findByExcuse(ctx context.Context, excuseID, deviceID string) (*domain.Favorite, error) {
	favorites, err := s.store.ListFavorites(ctx, deviceID)
	if err != nil {
		return nil, errors.Internal("list favorites").WithCause(err)
	}
	for _, f := range favorites {
		if f.ExcuseID == excuseID {
			return &f.Favorite, nil
		}
	}
	return nil, errors.Internal("favorite row vanished after insert")
}
