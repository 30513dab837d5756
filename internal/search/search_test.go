package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibiapp/alibi-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:        "exc-123",
		Situation: "Late to work",
		Tone:      "believable",
		Length:    "short",
		Excuse:    "My car was towed by mistake.",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "exc-1", Situation: "Late to work", Excuse: "Traffic"},
		{ID: "exc-2", Situation: "Missed deadline", Excuse: "Scope creep"},
		{ID: "exc-3", Situation: "Forgot birthday", Excuse: "Calendar sync"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:        "exc-123",
		Situation: "Late to work",
		Excuse:    "Flat tire on the highway.",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	err = index.DeleteDocument("exc-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Search_Basic(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "exc-1", Situation: "Late to work", Tone: "believable", Excuse: "My alarm app silently updated overnight."},
		{ID: "exc-2", Situation: "Late to work", Tone: "funny", Excuse: "A parade of geese blocked my street."},
		{ID: "exc-3", Situation: "Missed deadline", Tone: "believable", Excuse: "The staging environment went down for hours."},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query: "geese",
		Limit: 10,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "exc-2", result.Hits[0].ID)
	assert.Equal(t, "A parade of geese blocked my street.", result.Hits[0].Excuse)
}

func TestSearchIndex_Search_ToneFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "exc-1", Situation: "Late to work", Tone: "believable", Excuse: "Traffic jam on the bridge."},
		{ID: "exc-2", Situation: "Late to work", Tone: "funny", Excuse: "Traffic of sentient scooters."},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), SearchParams{
		Query: "traffic",
		Tone:  "funny",
		Limit: 10,
	})
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "exc-2", result.Hits[0].ID)
	assert.Equal(t, "funny", result.Hits[0].Tone)
}

func TestSearchIndex_Search_FuzzyMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocument(&SearchDocument{
		ID:        "exc-1",
		Situation: "Late to work",
		Excuse:    "The elevator trapped me between floors.",
	})
	require.NoError(t, err)

	// One-character typo should still match via the fuzzy clause.
	result, err := index.Search(context.Background(), SearchParams{
		Query: "elevatr",
		Limit: 10,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "exc-1", result.Hits[0].ID)
}

func TestSearchIndex_Search_PrefixMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocument(&SearchDocument{
		ID:        "exc-1",
		Situation: "Late to work",
		Excuse:    "The elevator trapped me between floors.",
	})
	require.NoError(t, err)

	// A word prefix matches even where stemming shortens the indexed term
	// ("elevator" stems to "elev"); the prefix clause runs on the unstemmed
	// companion field.
	result, err := index.Search(context.Background(), SearchParams{
		Query: "Elevat",
		Limit: 10,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "exc-1", result.Hits[0].ID)
}

func TestSearchIndex_Search_MatchAll(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "exc-1", Situation: "Late to work", Excuse: "One"},
		{ID: "exc-2", Situation: "Missed deadline", Excuse: "Two"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	// Empty query returns everything.
	result, err := index.Search(context.Background(), SearchParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocument(&SearchDocument{ID: "exc-1", Excuse: "Something"})
	require.NoError(t, err)

	err = index.Rebuild()
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestExcuseToSearchDocument(t *testing.T) {
	now := time.Now()
	e := &domain.Excuse{
		ID:                  "exc-1",
		Situation:           "Late to work",
		Tone:                "believable",
		Length:              "short",
		Excuse:              "My badge stopped working.",
		BelievabilityRating: 72,
		CreatedAt:           now,
	}

	doc := ExcuseToSearchDocument(e)

	assert.Equal(t, "exc-1", doc.ID)
	assert.Equal(t, "Late to work", doc.Situation)
	assert.Equal(t, "believable", doc.Tone)
	assert.Equal(t, 72, doc.Believability)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)
}
