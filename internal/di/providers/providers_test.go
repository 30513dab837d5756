package providers

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibiapp/alibi-server/internal/config"
	"github.com/alibiapp/alibi-server/internal/domain"
	"github.com/alibiapp/alibi-server/internal/logger"
	"github.com/alibiapp/alibi-server/internal/search"
	"github.com/alibiapp/alibi-server/internal/store/sqlite"
)

// setupProviderTest builds an injector pre-seeded with a config and a quiet
// logger, so individual providers can be invoked directly.
func setupProviderTest(t *testing.T, cfg *config.Config) do.Injector {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger.New(logger.Config{
		Writer:      io.Discard,
		Environment: "development",
		Level:       slog.LevelError,
	}))
	return injector
}

func TestProvideCatalog_MasterFileWins(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "alibi-provider-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// A master file entry for a situation the embedded seeds also define.
	masterPath := filepath.Join(tmpDir, "master.json")
	master := `{
		"Late to work": [
			{"excuse": "The office moved and nobody told me.", "tone": "Believable", "length": "Quick one-liner", "believabilityRating": 90}
		]
	}`
	require.NoError(t, os.WriteFile(masterPath, []byte(master), 0o644))

	injector := setupProviderTest(t, &config.Config{
		Data: config.DataConfig{
			BasePath:          tmpDir,
			MasterCatalogPath: masterPath,
		},
	})

	cat, err := ProvideCatalog(injector)
	require.NoError(t, err)

	// The master source outranks the embedded seed list, so its lone record
	// is the only possible selection.
	for range 20 {
		record, err := cat.Select("Late to work", "", "")
		require.NoError(t, err)
		assert.Equal(t, "The office moved and nobody told me.", record.Excuse)
	}

	// Situations only the embedded seeds define still load.
	_, err = cat.Select("Missed deadline", "", "")
	require.NoError(t, err)
}

func TestProvideSearchIndex_BackfillsFromStore(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "alibi-provider-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	excuses := []*domain.Excuse{
		{ID: "exc-1", Situation: "Late to work", Tone: "believable", Length: "short", Excuse: "The drawbridge jammed open.", BelievabilityRating: 60, CreatedAt: time.Now()},
		{ID: "exc-2", Situation: "Missed deadline", Tone: "absurd", Length: "long", Excuse: "A heron deleted the shared drive.", BelievabilityRating: 5, CreatedAt: time.Now()},
	}
	for _, e := range excuses {
		require.NoError(t, st.CreateExcuse(ctx, e))
	}

	injector := setupProviderTest(t, &config.Config{
		Data: config.DataConfig{BasePath: tmpDir},
	})
	do.ProvideValue(injector, &StoreHandle{Store: st})

	// Fresh index directory: the provider must re-index persisted excuses
	// instead of leaving them unsearchable.
	handle, err := ProvideSearchIndex(injector)
	require.NoError(t, err)
	defer handle.Close()

	count, err := handle.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	result, err := handle.Search(ctx, search.SearchParams{Query: "heron", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "exc-2", result.Hits[0].ID)
}
