// Package service provides the business logic layer for excuse generation,
// rating aggregation, and per-device favorites.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alibiapp/alibi-server/internal/catalog"
	"github.com/alibiapp/alibi-server/internal/domain"
	"github.com/alibiapp/alibi-server/internal/errors"
	"github.com/alibiapp/alibi-server/internal/id"
	"github.com/alibiapp/alibi-server/internal/llm"
	"github.com/alibiapp/alibi-server/internal/search"
	"github.com/alibiapp/alibi-server/internal/store"
)

// Generator produces excuses from the remote model. Nil-able: when remote
// generation is not configured the service falls back to the local catalog.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (llm.Result, error)
	Adjust(ctx context.Context, req llm.AdjustRequest) (llm.Result, error)
	Ultimate(ctx context.Context) (llm.Result, error)
}

// Indexer is the slice of the search index the service writes to and queries.
type Indexer interface {
	IndexDocument(doc *search.SearchDocument) error
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
}

// GenerateResult pairs a persisted excuse with how many excuses have been
// generated for its situation so far (this one included).
type GenerateResult struct {
	Excuse     *domain.Excuse `json:"excuse"`
	UsageCount int            `json:"usageCount"`
}

// ExcuseService orchestrates generation, persistence, and indexing.
type ExcuseService struct {
	store     store.Store
	catalog   *catalog.Catalog
	generator Generator // nil when no API key is configured
	index     Indexer
	logger    *slog.Logger
}

// NewExcuseService creates a new excuse service.
func NewExcuseService(st store.Store, cat *catalog.Catalog, gen Generator, idx Indexer, logger *slog.Logger) *ExcuseService {
	return &ExcuseService{
		store:     st,
		catalog:   cat,
		generator: gen,
		index:     idx,
		logger:    logger,
	}
}

// Generate produces, persists, and indexes a fresh excuse. Tone and length are
// normalized to canonical values first. The reserved ultimate situation routes
// to the Easter-egg generation path.
func (s *ExcuseService) Generate(ctx context.Context, situation, tone, length, seed string) (*GenerateResult, error) {
	tone = catalog.NormalizeTone(tone)
	length = catalog.NormalizeLength(length)

	var result llm.Result
	var err error

	switch {
	case s.generator == nil:
		result, err = s.localFallback(situation, tone, length)
	case situation == domain.UltimateSituation:
		result, err = s.generator.Ultimate(ctx)
		if err != nil {
			err = errors.Upstream("excuse generation failed", err)
		}
	default:
		result, err = s.generator.Generate(ctx, llm.GenerateRequest{
			Situation: situation,
			Tone:      tone,
			Length:    length,
			Seed:      seed,
		})
		if err != nil {
			err = errors.Upstream("excuse generation failed", err)
		}
	}
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, situation, tone, length, result)
}

// Adjust regenerates an existing excuse to be more or less believable and
// persists the refinement as a new excuse row.
func (s *ExcuseService) Adjust(ctx context.Context, excuseID, direction, seed string) (*GenerateResult, error) {
	if direction != llm.DirectionBetter && direction != llm.DirectionWorse {
		return nil, errors.Validationf("direction must be %q or %q", llm.DirectionBetter, llm.DirectionWorse)
	}

	original, err := s.store.GetExcuse(ctx, excuseID)
	if err != nil {
		if errors.Is(err, store.ErrExcuseNotFound) {
			return nil, errors.NotFoundf("excuse %s not found", excuseID)
		}
		return nil, errors.Internal("load excuse").WithCause(err)
	}

	if s.generator == nil {
		return nil, errors.Upstream("excuse adjustment requires remote generation, which is not configured", nil)
	}

	result, err := s.generator.Adjust(ctx, llm.AdjustRequest{
		OriginalExcuse: original.Excuse,
		Situation:      original.Situation,
		Tone:           original.Tone,
		Length:         original.Length,
		Direction:      direction,
		Seed:           seed,
	})
	if err != nil {
		return nil, errors.Upstream("excuse adjustment failed", err)
	}

	return s.persist(ctx, original.Situation, original.Tone, original.Length, result)
}

// GetExcuse returns a persisted excuse by ID.
func (s *ExcuseService) GetExcuse(ctx context.Context, excuseID string) (*domain.Excuse, error) {
	excuse, err := s.store.GetExcuse(ctx, excuseID)
	if err != nil {
		if errors.Is(err, store.ErrExcuseNotFound) {
			return nil, errors.NotFoundf("excuse %s not found", excuseID)
		}
		return nil, errors.Internal("load excuse").WithCause(err)
	}
	return excuse, nil
}

// SelectLocal picks a catalog excuse without persisting anything. Used by the
// offline endpoint and as the generation fallback.
func (s *ExcuseService) SelectLocal(situation, tone, length string) (catalog.Record, error) {
	record, err := s.catalog.Select(situation, catalog.NormalizeTone(tone), catalog.NormalizeLength(length))
	if err != nil {
		if errors.Is(err, catalog.ErrNoExcuses) {
			return catalog.Record{}, errors.NotFoundf("no local excuses for situation %q", situation)
		}
		return catalog.Record{}, errors.Internal("select local excuse").WithCause(err)
	}
	return record, nil
}

// Search queries the full-text index over persisted excuses. Tone and length
// filters are normalized before matching.
func (s *ExcuseService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.Tone != "" {
		params.Tone = catalog.NormalizeTone(params.Tone)
	}
	if params.Length != "" {
		params.Length = catalog.NormalizeLength(params.Length)
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, errors.Internal("search excuses").WithCause(err)
	}
	return result, nil
}

// CatalogStats reports the loaded local catalog's shape.
func (s *ExcuseService) CatalogStats() catalog.Stats {
	return s.catalog.Stats()
}

// localFallback serves generation from the catalog when no generator is wired.
func (s *ExcuseService) localFallback(situation, tone, length string) (llm.Result, error) {
	record, err := s.catalog.Select(situation, tone, length)
	if err != nil {
		if errors.Is(err, catalog.ErrNoExcuses) {
			return llm.Result{}, errors.Upstream("remote generation is not configured and the local catalog has no excuses for this situation", nil)
		}
		return llm.Result{}, errors.Internal("select local excuse").WithCause(err)
	}

	s.logger.Info("serving generation from local catalog", "situation", situation)
	return llm.Result{Excuse: record.Excuse, BelievabilityRating: record.BelievabilityRating}, nil
}

// persist writes the generated excuse, indexes it, and computes the usage count.
func (s *ExcuseService) persist(ctx context.Context, situation, tone, length string, result llm.Result) (*GenerateResult, error) {
	excuse := &domain.Excuse{
		ID:                  id.MustGenerate("exc"),
		Situation:           situation,
		Tone:                tone,
		Length:              length,
		Excuse:              result.Excuse,
		BelievabilityRating: result.BelievabilityRating,
		CreatedAt:           time.Now(),
	}

	if err := s.store.CreateExcuse(ctx, excuse); err != nil {
		return nil, errors.Internal("persist excuse").WithCause(err)
	}

	// Index failures don't fail the request; the excuse is already durable.
	if err := s.index.IndexDocument(search.ExcuseToSearchDocument(excuse)); err != nil {
		s.logger.Warn("failed to index excuse", "excuse_id", excuse.ID, "error", err)
	}

	usage, err := s.store.CountExcusesForSituation(ctx, situation)
	if err != nil {
		s.logger.Warn("failed to count situation usage", "situation", situation, "error", err)
		usage = 0
	}

	s.logger.Info("excuse generated",
		"excuse_id", excuse.ID,
		"situation", situation,
		"tone", tone,
		"length", length,
		"believability", excuse.BelievabilityRating,
	)

	return &GenerateResult{Excuse: excuse, UsageCount: usage}, nil
}
