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

// Top-rated listing bounds.
const (
	defaultTopRatedLimit = 10
	maxTopRatedLimit     = 50
)

// RatingService handles star ratings and share counting.
type RatingService struct {
	store  store.Store
	logger *slog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(st store.Store, logger *slog.Logger) *RatingService {
	return &RatingService{store: st, logger: logger}
}

// SubmitRating records a 1-5 star rating and returns the updated aggregate.
// The rating is validated before anything is persisted.
func (s *RatingService) SubmitRating(ctx context.Context, excuseID string, stars int) (domain.RatingSummary, error) {
	if stars < 1 || stars > 5 {
		return domain.RatingSummary{}, errors.Validation("rating must be between 1 and 5")
	}

	if err := s.ensureExcuseExists(ctx, excuseID); err != nil {
		return domain.RatingSummary{}, err
	}

	rating := &domain.Rating{
		ID:        id.MustGenerate("rat"),
		ExcuseID:  excuseID,
		Rating:    stars,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateRating(ctx, rating); err != nil {
		return domain.RatingSummary{}, errors.Internal("persist rating").WithCause(err)
	}

	summary, err := s.store.GetRatingSummary(ctx, excuseID)
	if err != nil {
		return domain.RatingSummary{}, errors.Internal("rating summary").WithCause(err)
	}

	s.logger.Info("rating submitted",
		"excuse_id", excuseID,
		"rating", stars,
		"average", summary.AverageRating,
		"total", summary.TotalRatings,
	)

	return summary, nil
}

// GetSummary returns the rating aggregate for an excuse.
func (s *RatingService) GetSummary(ctx context.Context, excuseID string) (domain.RatingSummary, error) {
	if err := s.ensureExcuseExists(ctx, excuseID); err != nil {
		return domain.RatingSummary{}, err
	}

	summary, err := s.store.GetRatingSummary(ctx, excuseID)
	if err != nil {
		return domain.RatingSummary{}, errors.Internal("rating summary").WithCause(err)
	}
	return summary, nil
}

// TopRated lists excuses by average rating descending. A non-positive limit
// falls back to the default; oversized limits are clamped.
func (s *RatingService) TopRated(ctx context.Context, limit int) ([]*domain.TopRatedExcuse, error) {
	if limit <= 0 {
		limit = defaultTopRatedLimit
	}
	if limit > maxTopRatedLimit {
		limit = maxTopRatedLimit
	}

	top, err := s.store.ListTopRated(ctx, limit)
	if err != nil {
		return nil, errors.Internal("list top rated").WithCause(err)
	}
	return top, nil
}

// RecordShare counts one share action for an excuse.
func (s *RatingService) RecordShare(ctx context.Context, excuseID, method string) error {
	if err := s.ensureExcuseExists(ctx, excuseID); err != nil {
		return err
	}

	if method == "" {
		method = "unknown"
	}

	share := &domain.Share{
		ID:          id.MustGenerate("shr"),
		ExcuseID:    excuseID,
		ShareMethod: method,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateShare(ctx, share); err != nil {
		return errors.Internal("persist share").WithCause(err)
	}

	s.logger.Info("share recorded", "excuse_id", excuseID, "method", method)
	return nil
}

func (s *RatingService) ensureExcuseExists(ctx context.Context, excuseID string) error {
	if _, err := s.store.GetExcuse(ctx, excuseID); err != nil {
		if errors.Is(err, store.ErrExcuseNotFound) {
			return errors.NotFoundf("excuse %s not found", excuseID)
		}
		return errors.Internal("load excuse").WithCause(err)
	}
	return nil
}
