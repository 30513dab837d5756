package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibiapp/alibi-server/internal/catalog"
	"github.com/alibiapp/alibi-server/internal/domain"
	domainerrors "github.com/alibiapp/alibi-server/internal/errors"
	"github.com/alibiapp/alibi-server/internal/llm"
	"github.com/alibiapp/alibi-server/internal/search"
	"github.com/alibiapp/alibi-server/internal/store"
	"github.com/alibiapp/alibi-server/internal/store/sqlite"
)

// fakeGenerator is a scripted Generator for tests.
type fakeGenerator struct {
	result llm.Result
	err    error

	generateCalls []llm.GenerateRequest
	adjustCalls   []llm.AdjustRequest
	ultimateCalls int
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.GenerateRequest) (llm.Result, error) {
	f.generateCalls = append(f.generateCalls, req)
	return f.result, f.err
}

func (f *fakeGenerator) Adjust(_ context.Context, req llm.AdjustRequest) (llm.Result, error) {
	f.adjustCalls = append(f.adjustCalls, req)
	return f.result, f.err
}

func (f *fakeGenerator) Ultimate(_ context.Context) (llm.Result, error) {
	f.ultimateCalls++
	return f.result, f.err
}

// setupExcuseTest wires an excuse service against real storage and a real
// search index in a temp directory.
func setupExcuseTest(t *testing.T, gen Generator) (*ExcuseService, store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "alibi-excuse-test-*")
	require.NoError(t, err)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	cat, err := catalog.Load(logger, catalog.EmbeddedSources()...)
	require.NoError(t, err)

	idx, err := search.NewSearchIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)

	svc := NewExcuseService(st, cat, gen, idx, logger)

	cleanup := func() {
		_ = idx.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return svc, st, cleanup
}

func TestExcuseService_Generate(t *testing.T) {
	gen := &fakeGenerator{result: llm.Result{
		Excuse:              "A hawk made off with my car keys.",
		BelievabilityRating: 31,
	}}
	svc, st, cleanup := setupExcuseTest(t, gen)
	defer cleanup()

	ctx := context.Background()

	result, err := svc.Generate(ctx, "Late to work", "Funny", "Quick One-Liner", "")
	require.NoError(t, err)

	assert.Equal(t, "A hawk made off with my car keys.", result.Excuse.Excuse)
	assert.Equal(t, 31, result.Excuse.BelievabilityRating)
	assert.Equal(t, 1, result.UsageCount)

	// Tone and length reach the generator in canonical form.
	require.Len(t, gen.generateCalls, 1)
	assert.Equal(t, "funny", gen.generateCalls[0].Tone)
	assert.Equal(t, "short", gen.generateCalls[0].Length)

	// The excuse is durable.
	persisted, err := st.GetExcuse(ctx, result.Excuse.ID)
	require.NoError(t, err)
	assert.Equal(t, "funny", persisted.Tone)

	// A second generation for the same situation bumps the usage count.
	result, err = svc.Generate(ctx, "Late to work", "funny", "short", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.UsageCount)
}

func TestExcuseService_Generate_Ultimate(t *testing.T) {
	gen := &fakeGenerator{result: llm.Result{
		Excuse:              "I was abducted by a jazz band.",
		BelievabilityRating: 0,
	}}
	svc, _, cleanup := setupExcuseTest(t, gen)
	defer cleanup()

	result, err := svc.Generate(context.Background(), domain.UltimateSituation, "funny", "long", "")
	require.NoError(t, err)

	assert.Equal(t, 1, gen.ultimateCalls)
	assert.Empty(t, gen.generateCalls)
	assert.Equal(t, domain.UltimateSituation, result.Excuse.Situation)
}

func TestExcuseService_Generate_UpstreamError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("api down")}
	svc, _, cleanup := setupExcuseTest(t, gen)
	defer cleanup()

	_, err := svc.Generate(context.Background(), "Late to work", "funny", "short", "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUpstream))
}

func TestExcuseService_Generate_LocalFallback(t *testing.T) {
	// No generator wired: generation is served from the local catalog.
	svc, st, cleanup := setupExcuseTest(t, nil)
	defer cleanup()

	ctx := context.Background()

	result, err := svc.Generate(ctx, "Late to work", "believable", "short", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Excuse.Excuse)

	// Fallback results are persisted like remote ones.
	_, err = st.GetExcuse(ctx, result.Excuse.ID)
	require.NoError(t, err)
}

func TestExcuseService_Generate_LocalFallback_UnknownSituation(t *testing.T) {
	svc, _, cleanup := setupExcuseTest(t, nil)
	defer cleanup()

	_, err := svc.Generate(context.Background(), "Quitting the circus", "funny", "short", "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUpstream))
}

func TestExcuseService_Adjust(t *testing.T) {
	gen := &fakeGenerator{result: llm.Result{
		Excuse:              "My car was towed.",
		BelievabilityRating: 70,
	}}
	svc, _, cleanup := setupExcuseTest(t, gen)
	defer cleanup()

	ctx := context.Background()

	original, err := svc.Generate(ctx, "Late to work", "believable", "short", "")
	require.NoError(t, err)

	gen.result = llm.Result{Excuse: "My car was towed, and I have the photos to prove it.", BelievabilityRating: 85}

	adjusted, err := svc.Adjust(ctx, original.Excuse.ID, llm.DirectionBetter, "")
	require.NoError(t, err)

	assert.NotEqual(t, original.Excuse.ID, adjusted.Excuse.ID)
	assert.Equal(t, original.Excuse.Situation, adjusted.Excuse.Situation)
	assert.Equal(t, 85, adjusted.Excuse.BelievabilityRating)
	assert.Equal(t, 2, adjusted.UsageCount)

	// The original is handed to the generator for refinement.
	require.Len(t, gen.adjustCalls, 1)
	assert.Equal(t, "My car was towed.", gen.adjustCalls[0].OriginalExcuse)
	assert.Equal(t, llm.DirectionBetter, gen.adjustCalls[0].Direction)
}

func TestExcuseService_Adjust_InvalidDirection(t *testing.T) {
	svc, _, cleanup := setupExcuseTest(t, &fakeGenerator{})
	defer cleanup()

	_, err := svc.Adjust(context.Background(), "exc-1", "sideways", "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestExcuseService_Adjust_NotFound(t *testing.T) {
	svc, _, cleanup := setupExcuseTest(t, &fakeGenerator{})
	defer cleanup()

	_, err := svc.Adjust(context.Background(), "exc-missing", llm.DirectionWorse, "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestExcuseService_SelectLocal(t *testing.T) {
	svc, _, cleanup := setupExcuseTest(t, nil)
	defer cleanup()

	record, err := svc.SelectLocal("Late to work", "Believable", "Short & Sweet")
	require.NoError(t, err)
	assert.NotEmpty(t, record.Excuse)
	assert.NotZero(t, record.BelievabilityRating)

	_, err = svc.SelectLocal("Quitting the circus", "funny", "short")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestExcuseService_Search(t *testing.T) {
	gen := &fakeGenerator{result: llm.Result{
		Excuse:              "A flock of pigeons unionized in my driveway.",
		BelievabilityRating: 12,
	}}
	svc, _, cleanup := setupExcuseTest(t, gen)
	defer cleanup()

	ctx := context.Background()

	generated, err := svc.Generate(ctx, "Late to work", "funny", "short", "")
	require.NoError(t, err)

	result, err := svc.Search(ctx, search.SearchParams{Query: "pigeons"})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, generated.Excuse.ID, result.Hits[0].ID)
}

func TestExcuseService_CatalogStats(t *testing.T) {
	svc, _, cleanup := setupExcuseTest(t, nil)
	defer cleanup()

	stats := svc.CatalogStats()
	assert.NotZero(t, stats.TotalSituations)
	assert.NotZero(t, stats.TotalExcuses)
	assert.Contains(t, stats.Situations, "Late to work")
}
