package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealvoice/mealvoice/internal/quantity"
)

func newTestStore(t *testing.T) *SQLiteReference {
	t.Helper()
	store, err := NewSQLiteReference(filepath.Join(t.TempDir(), "ref.db"), quantity.NewStaticPortions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteReference_PortionWeights(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetPortionWeight("shawarma wrap", 280))

	grams, ok := store.TypicalPortionGrams("chicken shawarma wrap")
	require.True(t, ok)
	assert.InDelta(t, 280, grams, 1e-9)

	// Longest matching key wins.
	require.NoError(t, store.SetPortionWeight("wrap", 200))
	grams, ok = store.TypicalPortionGrams("chicken shawarma wrap")
	require.True(t, ok)
	assert.InDelta(t, 280, grams, 1e-9)
}

func TestSQLiteReference_FallbackOnMiss(t *testing.T) {
	store := newTestStore(t)

	// Not in the database, but the compiled-in tables know it.
	grams, ok := store.TypicalPortionGrams("banana")
	require.True(t, ok)
	assert.InDelta(t, 120, grams, 1e-9)

	_, ok = store.TypicalPortionGrams("mystery casserole")
	assert.False(t, ok)
}

func TestSQLiteReference_Upsert(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetEdibleYield("crab", 0.4))
	require.NoError(t, store.SetEdibleYield("crab", 0.45))

	yield, ok := store.EdibleYield("whole crab")
	require.True(t, ok)
	assert.InDelta(t, 0.45, yield, 1e-9)
}

func TestSQLiteReference_CalorieBands(t *testing.T) {
	store := newTestStore(t)

	_, _, ok := store.CalorieBand("koshari")
	assert.False(t, ok)

	require.NoError(t, store.SetCalorieBand("koshari", 120, 260))
	minCal, maxCal, ok := store.CalorieBand("plate of koshari")
	require.True(t, ok)
	assert.InDelta(t, 120, minCal, 1e-9)
	assert.InDelta(t, 260, maxCal, 1e-9)
}

func TestSQLiteReference_RejectsInvalidRows(t *testing.T) {
	store := newTestStore(t)

	assert.Error(t, store.SetPortionWeight("", 100))
	assert.Error(t, store.SetPortionWeight("thing", -5))
	assert.Error(t, store.SetEdibleYield("thing", 1.5))
	assert.Error(t, store.SetCalorieBand("thing", 300, 100))
}

func TestNewSQLiteReference_EmptyPath(t *testing.T) {
	_, err := NewSQLiteReference("", nil)
	assert.Error(t, err)
}
