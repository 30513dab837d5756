package vault

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()

	v, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestDigest_Stable(t *testing.T) {
	a := Digest("My dog unplugged the router.")
	b := Digest("My dog unplugged the router.")
	c := Digest("My cat unplugged the router.")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // 256-bit hex
}

func TestVault_DeviceID(t *testing.T) {
	v := newTestVault(t)

	first, err := v.DeviceID()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	// Identity is stable across calls.
	second, err := v.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVault_GenerationCounter(t *testing.T) {
	v := newTestVault(t)

	count, err := v.GenerationCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	for i := uint64(1); i <= 3; i++ {
		count, err = v.IncrementGenerations()
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	count, err = v.GenerationCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestVault_SaveFavorite(t *testing.T) {
	v := newTestVault(t)

	entry := Entry{
		Situation:           "Late to work",
		Tone:                "funny",
		Length:              "short",
		Excuse:              "My shoes went on strike.",
		BelievabilityRating: 8,
	}
	require.NoError(t, v.SaveFavorite(entry))

	favorites, err := v.ListFavorites()
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, Digest("My shoes went on strike."), favorites[0].Digest)
	assert.False(t, favorites[0].SavedAt.IsZero())
}

func TestVault_SaveFavorite_SameTextCollapses(t *testing.T) {
	v := newTestVault(t)

	entry := Entry{Excuse: "The ferry sank. Briefly.", Situation: "Late to work"}
	require.NoError(t, v.SaveFavorite(entry))
	require.NoError(t, v.SaveFavorite(entry))

	favorites, err := v.ListFavorites()
	require.NoError(t, err)
	assert.Len(t, favorites, 1)
}

func TestVault_SaveFavorite_CapEnforced(t *testing.T) {
	v := newTestVault(t)

	for i := 0; i < MaxFavorites; i++ {
		err := v.SaveFavorite(Entry{Excuse: fmt.Sprintf("Excuse number %d", i)})
		require.NoError(t, err)
	}

	err := v.SaveFavorite(Entry{Excuse: "One excuse too far"})
	assert.ErrorIs(t, err, ErrVaultFull)

	// Overwriting an existing digest is still allowed at the cap.
	err = v.SaveFavorite(Entry{Excuse: "Excuse number 0", Situation: "updated"})
	assert.NoError(t, err)
}

func TestVault_RemoveFavorite(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.SaveFavorite(Entry{Excuse: "Gone soon"}))
	digest := Digest("Gone soon")

	require.NoError(t, v.RemoveFavorite(digest))

	err := v.RemoveFavorite(digest)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	favorites, err := v.ListFavorites()
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestVault_ListFavorites_NewestFirst(t *testing.T) {
	v := newTestVault(t)

	base := time.Now()
	require.NoError(t, v.SaveFavorite(Entry{Excuse: "older", SavedAt: base.Add(-time.Hour)}))
	require.NoError(t, v.SaveFavorite(Entry{Excuse: "newer", SavedAt: base}))

	favorites, err := v.ListFavorites()
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, "newer", favorites[0].Excuse)
	assert.Equal(t, "older", favorites[1].Excuse)
}

func TestVault_Ratings(t *testing.T) {
	v := newTestVault(t)
	digest := Digest("Rate me")

	_, ok, err := v.GetRating(digest)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, v.RateExcuse(digest, 4))

	stars, ok, err := v.GetRating(digest)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, stars)

	// Re-rating overwrites.
	require.NoError(t, v.RateExcuse(digest, 2))
	stars, _, err = v.GetRating(digest)
	require.NoError(t, err)
	assert.Equal(t, 2, stars)

	assert.Error(t, v.RateExcuse(digest, 0))
	assert.Error(t, v.RateExcuse(digest, 6))
}
