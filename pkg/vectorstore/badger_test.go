package vectorstore

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/soundprediction/recommender/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerStore(db)
}

func specimenRecord(id, name, title, content string, embedding ...float32) Record {
	return Record{
		Document: types.Document{
			ID:      id,
			Content: content,
			Metadata: map[string]any{
				types.MetadataSpecimenName: name,
				types.MetadataTitle:        title,
			},
		},
		Embedding: embedding,
	}
}

func TestBadgerStoreQuery(t *testing.T) {
	store := newTestBadgerStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "specimens", []Record{
		specimenRecord("a", "FOS-001", "Megalodon", "Megalodon tooth.", 1, 0, 0),
		specimenRecord("b", "FOS-002", "Ammonite", "Spiral shell.", 0, 1, 0),
		specimenRecord("c", "FOS-003", "Lemon shark", "Shark jaw.", 0.9, 0.1, 0),
	}))

	col, err := store.Collection(ctx, "specimens")
	require.NoError(t, err)
	assert.Equal(t, "specimens", col.Name())

	docs, err := col.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "FOS-001", docs[0].SpecimenName())
	assert.Equal(t, "Megalodon tooth.", docs[0].Content)
	assert.InDelta(t, 0, docs[0].Distance, 1e-6)
	assert.Equal(t, "c", docs[1].ID)
	assert.Greater(t, docs[1].Distance, docs[0].Distance)
}

func TestBadgerStoreUpsertReplaces(t *testing.T) {
	store := newTestBadgerStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "specimens", []Record{specimenRecord("a", "FOS-001", "Old", "old", 1, 0)}))
	require.NoError(t, store.Upsert(ctx, "specimens", []Record{specimenRecord("a", "FOS-001", "New", "new", 1, 0)}))

	col, err := store.Collection(ctx, "specimens")
	require.NoError(t, err)
	docs, err := col.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "New", docs[0].Title())
}

func TestBadgerStoreCollectionsAreIsolated(t *testing.T) {
	store := newTestBadgerStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "fossils", []Record{specimenRecord("a", "FOS-001", "A", "a", 1, 0)}))
	require.NoError(t, store.Upsert(ctx, "minerals", []Record{specimenRecord("b", "MIN-001", "B", "b", 1, 0)}))

	col, err := store.Collection(ctx, "fossils")
	require.NoError(t, err)
	docs, err := col.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "FOS-001", docs[0].SpecimenName())
}

func TestBadgerStoreCollectionNamePrefixes(t *testing.T) {
	store := newTestBadgerStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "a", []Record{
		specimenRecord("x", "FOS-001", "Megalodon", "Megalodon tooth.", 1, 0, 0),
	}))
	require.NoError(t, store.Upsert(ctx, "a:b", []Record{
		specimenRecord("y", "FOS-002", "Ammonite", "Spiral shell.", 1, 0),
	}))

	col, err := store.Collection(ctx, "a")
	require.NoError(t, err)
	docs, err := col.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "FOS-001", docs[0].SpecimenName())

	col, err = store.Collection(ctx, "a:b")
	require.NoError(t, err)
	docs, err = col.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "FOS-002", docs[0].SpecimenName())

	err = store.Upsert(ctx, "a\x00b", []Record{specimenRecord("z", "FOS-003", "Trilobite", "Segments.", 1, 0)})
	assert.Error(t, err)
}

func TestBadgerStoreErrors(t *testing.T) {
	store := newTestBadgerStore(t)
	ctx := context.Background()

	_, err := store.Collection(ctx, "missing")
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	require.NoError(t, store.Upsert(ctx, "specimens", []Record{specimenRecord("a", "FOS-001", "A", "a", 1, 0, 0)}))

	err = store.Upsert(ctx, "specimens", []Record{specimenRecord("b", "FOS-002", "B", "b", 1, 0)})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	err = store.Upsert(ctx, "specimens", []Record{specimenRecord("", "FOS-003", "C", "c", 1, 0, 0)})
	assert.Error(t, err)

	col, err := store.Collection(ctx, "specimens")
	require.NoError(t, err)
	_, err = col.Query(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	_, err = store.Collection(ctx, "specimens")
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestOpenBadgerStoreInMemory(t *testing.T) {
	store, err := OpenBadgerStore("", nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderBadger, store.Provider())

	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "specimens", []Record{specimenRecord("a", "FOS-001", "A", "a", 0, 1)}))
	require.NoError(t, store.Close())
}

func TestOpenBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadgerStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, "specimens", []Record{specimenRecord("a", "FOS-001", "A", "a", 0, 1)}))
	require.NoError(t, store.Close())

	reopened, err := OpenBadgerStore(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	col, err := reopened.Collection(ctx, "specimens")
	require.NoError(t, err)
	docs, err := col.Query(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "FOS-001", docs[0].SpecimenName())
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	assert.InDelta(t, 1.0, cosine(a, norm(a), []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosine(a, norm(a), []float32{0, 3}), 1e-9)
	assert.Equal(t, 0.0, cosine(a, norm(a), []float32{0, 0}))
	assert.Equal(t, 0.0, cosine([]float32{1, 0, 0}, 1, a))
}
