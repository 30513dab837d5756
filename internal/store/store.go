// Package store defines the persistence interface for excuses, ratings,
// shares, and favorites, plus the sentinel errors implementations return.
package store

import (
	"context"
	"errors"

	"github.com/alibiapp/alibi-server/internal/domain"
)

// Sentinel errors returned by store implementations.
var (
	// ErrExcuseNotFound is returned when an excuse ID does not exist.
	ErrExcuseNotFound = errors.New("excuse not found")
	// ErrFavoriteNotFound is returned when a favorite row does not exist.
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// Store is the persistence interface consumed by the service layer.
//
// All write operations are append-only except favorite removal; see the
// individual method comments. Storage failures propagate to the caller
// unchanged — no retries happen at this layer.
type Store interface {
	// CreateExcuse persists a generated excuse. Rows are never updated.
	CreateExcuse(ctx context.Context, excuse *domain.Excuse) error
	// GetExcuse returns an excuse by ID, or ErrExcuseNotFound.
	GetExcuse(ctx context.Context, id string) (*domain.Excuse, error)
	// CountExcusesForSituation counts all persisted excuses for a situation.
	CountExcusesForSituation(ctx context.Context, situation string) (int, error)
	// ListExcuses returns every persisted excuse, oldest first. Used to
	// backfill the search index after a rebuild.
	ListExcuses(ctx context.Context) ([]*domain.Excuse, error)

	// CreateRating appends a rating row. No per-device dedup is applied.
	CreateRating(ctx context.Context, rating *domain.Rating) error
	// GetRatingSummary returns the arithmetic mean and count over all
	// ratings for the excuse. Zero-valued when no ratings exist.
	GetRatingSummary(ctx context.Context, excuseID string) (domain.RatingSummary, error)
	// ListTopRated returns excuses joined with their rating aggregate and
	// share count, ordered by average rating descending. Excuses without
	// ratings sort last.
	ListTopRated(ctx context.Context, limit int) ([]*domain.TopRatedExcuse, error)

	// CreateShare appends a share row.
	CreateShare(ctx context.Context, share *domain.Share) error

	// CreateFavorite inserts a favorite. The (excuseID, deviceID) pair is
	// unique; inserting an existing pair is a no-op and reports created=false.
	CreateFavorite(ctx context.Context, favorite *domain.Favorite) (created bool, err error)
	// DeleteFavorite removes a favorite by ID scoped to the device.
	// Returns ErrFavoriteNotFound when no row matches.
	DeleteFavorite(ctx context.Context, id, deviceID string) error
	// ListFavorites returns a device's favorites joined with excuse text and
	// the current average rating, newest first.
	ListFavorites(ctx context.Context, deviceID string) ([]*domain.FavoriteWithExcuse, error)
	// CountFavorites counts a device's favorites.
	CountFavorites(ctx context.Context, deviceID string) (int, error)
	// ClearFavorites removes all favorites for a device and returns the
	// number of rows deleted.
	ClearFavorites(ctx context.Context, deviceID string) (int, error)
}
