package vectorindex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	store, err := datastore.Create(filepath.Join(t.TempDir(), "fraud.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ix, err := CreateIndex(store, NewHashEmbedder(128))
	require.NoError(t, err)
	return ix
}

// --- HAPPY PATH TESTS ---

func TestQuery_RanksByDistance(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Upsert(ctx, CollectionCases,
		Entry{ID: "CASE_1", Category: "card_testing", Content: "many small card testing charges at one merchant"},
		Entry{ID: "CASE_2", Category: "account_takeover", Content: "password reset then login from new device abroad"},
	))

	matches, err := ix.Query(ctx, CollectionCases, "login from new device after password reset", 5, "")

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "CASE_2", matches[0].ID)
	assert.LessOrEqual(t, matches[0].Distance, matches[1].Distance)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.InDelta(t, 1/(1+matches[0].Distance), matches[0].Score, 1e-12)
}

func TestQuery_EqualDistance_TieBrokenByID(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Upsert(ctx, CollectionPatterns,
		Entry{ID: "P_b", Content: "velocity spike"},
		Entry{ID: "P_a", Content: "velocity spike"},
		Entry{ID: "P_c", Content: "velocity spike"},
	))

	matches, err := ix.Query(ctx, CollectionPatterns, "unrelated words entirely", 3, "")

	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, []string{"P_a", "P_b", "P_c"}, []string{matches[0].ID, matches[1].ID, matches[2].ID})
}

func TestQuery_CategoryFilterAppliedBeforeRanking(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Upsert(ctx, CollectionProfiles,
		Entry{ID: "U1", Category: "High", Content: "young user many devices"},
		Entry{ID: "U2", Category: "Low", Content: "young user many devices"},
	))

	matches, err := ix.Query(ctx, CollectionProfiles, "young user many devices", 5, "Low")

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "U2", matches[0].ID)
}

func TestQuery_LimitsResultsAndKeepsMetadata(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Upsert(ctx, CollectionCases,
		Entry{ID: "C1", Content: "one", Metadata: map[string]any{"amount": 12.5}},
		Entry{ID: "C2", Content: "two"},
		Entry{ID: "C3", Content: "three"},
	))

	matches, err := ix.Query(ctx, CollectionCases, "one", 1, "")

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "C1", matches[0].ID)
	assert.Equal(t, 12.5, matches[0].Metadata["amount"])
}

func TestUpsert_ReplacesExisting(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Upsert(ctx, CollectionCases, Entry{ID: "C1", Content: "old"}))
	require.NoError(t, ix.Upsert(ctx, CollectionCases, Entry{ID: "C1", Content: "new text"}))

	n, err := ix.Count(ctx, CollectionCases)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	matches, err := ix.Query(ctx, CollectionCases, "new text", 1, "")
	require.NoError(t, err)
	assert.Equal(t, "new text", matches[0].Content)
}

func TestQuery_EmptyCollection_ReturnsEmpty(t *testing.T) {
	ix := newTestIndex(t)

	matches, err := ix.Query(context.Background(), CollectionCases, "anything", 5, "")

	require.NoError(t, err)
	assert.Empty(t, matches)
}

// --- ERROR PATH TESTS ---

func TestOpenIndex_MissingTable_ReturnsUnavailable(t *testing.T) {
	store, err := datastore.Create(filepath.Join(t.TempDir(), "fraud.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = OpenIndex(store, NewHashEmbedder(8))

	assert.ErrorIs(t, err, datastore.ErrDataSourceUnavailable)
}

func TestOpenIndex_NilStore_ReturnsUnavailable(t *testing.T) {
	_, err := OpenIndex(nil, NewHashEmbedder(8))

	assert.ErrorIs(t, err, datastore.ErrDataSourceUnavailable)
}

func TestQuery_DimensionMismatch_ReturnsError(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Upsert(ctx, CollectionCases, Entry{ID: "C1", Content: "text"}))

	ix.embedder = NewHashEmbedder(16)
	_, err := ix.Query(ctx, CollectionCases, "text", 1, "")

	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
