package vectorstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modscope-mcp/pkg/types"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(collection, path string, vector []float32) Record {
	return Record{
		ID:     types.Identity(collection, path),
		Vector: vector,
		Payload: Payload{
			Name:      path,
			Path:      path,
			Kind:      "function",
			IndexedAt: time.Now().UTC(),
		},
	}
}

func TestCollectionLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	exists, err := store.CollectionExists(ctx, "toolkit")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.CreateCollection(ctx, "toolkit", 4, DistanceCosine))

	exists, err = store.CollectionExists(ctx, "toolkit")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.DeleteCollection(ctx, "toolkit"))
	exists, err = store.CollectionExists(ctx, "toolkit")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpsertIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, "toolkit", 4, DistanceCosine))

	records := []Record{
		testRecord("toolkit", "toolkit.Foo", []float32{1, 0, 0, 0}),
		testRecord("toolkit", "toolkit.baz", []float32{0, 1, 0, 0}),
	}

	require.NoError(t, store.Upsert(ctx, "toolkit", records))
	count, err := store.Count(ctx, "toolkit")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Re-indexing an unchanged namespace leaves the record count unchanged.
	require.NoError(t, store.Upsert(ctx, "toolkit", records))
	count, err = store.Count(ctx, "toolkit")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, "toolkit", 4, DistanceCosine))

	err := store.Upsert(ctx, "toolkit", []Record{
		testRecord("toolkit", "toolkit.bad", []float32{1, 0}),
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestUpsertMissingCollection(t *testing.T) {
	store := setupTestStore(t)
	err := store.Upsert(context.Background(), "nope", []Record{
		testRecord("nope", "nope.x", []float32{1}),
	})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestScrollPagination(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, "toolkit", 2, DistanceCosine))

	var records []Record
	for i := 0; i < 7; i++ {
		records = append(records, testRecord("toolkit", fmt.Sprintf("toolkit.f%d", i), []float32{1, float32(i)}))
	}
	require.NoError(t, store.Upsert(ctx, "toolkit", records))

	seen := make(map[string]bool)
	cursor := ""
	pages := 0
	for {
		page, next, err := store.Scroll(ctx, "toolkit", 3, cursor)
		require.NoError(t, err)
		for _, rec := range page {
			assert.False(t, seen[rec.ID], "record %s repeated across pages", rec.ID)
			seen[rec.ID] = true
		}
		pages++
		if next == "" {
			break
		}
		cursor = next
		require.Less(t, pages, 10, "scroll did not terminate")
	}

	assert.Len(t, seen, 7)
}

func TestScrollRoundTripsPayload(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, "toolkit", 2, DistanceCosine))

	rec := testRecord("toolkit", "toolkit.Foo", []float32{1, 2})
	rec.Payload.DocSummary = "Foo does things."
	rec.Payload.Source = "class Foo: ..."
	rec.Payload.NamespaceVersion = "1.2.3"
	require.NoError(t, store.Upsert(ctx, "toolkit", []Record{rec}))

	page, _, err := store.Scroll(ctx, "toolkit", 10, "")
	require.NoError(t, err)
	require.Len(t, page, 1)

	got := page[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, []float32{1, 2}, got.Vector)
	assert.Equal(t, "Foo does things.", got.Payload.DocSummary)
	assert.Equal(t, "class Foo: ...", got.Payload.Source)
	assert.Equal(t, "1.2.3", got.Payload.NamespaceVersion)
}

func TestSearchRanksByCosine(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, "toolkit", 3, DistanceCosine))

	require.NoError(t, store.Upsert(ctx, "toolkit", []Record{
		testRecord("toolkit", "toolkit.exact", []float32{1, 0, 0}),
		testRecord("toolkit", "toolkit.near", []float32{0.9, 0.1, 0}),
		testRecord("toolkit", "toolkit.far", []float32{0, 0, 1}),
	}))

	hits, err := store.Search(ctx, "toolkit", []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "toolkit.exact", hits[0].Payload.Path)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "toolkit.far", hits[2].Payload.Path)
}

func TestSearchThresholdAndLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, "toolkit", 3, DistanceCosine))

	require.NoError(t, store.Upsert(ctx, "toolkit", []Record{
		testRecord("toolkit", "toolkit.exact", []float32{1, 0, 0}),
		testRecord("toolkit", "toolkit.orthogonal", []float32{0, 1, 0}),
	}))

	hits, err := store.Search(ctx, "toolkit", []float32{1, 0, 0}, 10, 0.7)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "toolkit.exact", hits[0].Payload.Path)

	hits, err = store.Search(ctx, "toolkit", []float32{1, 0, 0}, 1, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
