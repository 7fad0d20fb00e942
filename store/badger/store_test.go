package badger

import (
	"context"
	"testing"

	"github.com/poiesic/grounder/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndGetDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := &store.Document{
		Id:                 "doc-1",
		Collection:         store.CollectionSearch,
		Title:              "Q3 Review",
		Content:            "Q3 revenue rose 4% over plan",
		ModifiedDate:       "2024-09-01",
		SensitivityLabel:   "Internal",
		Permissions:        []string{"Finance"},
		InformationBarrier: "Finance",
		Vector:             []float32{0.6, 0.8},
	}
	require.NoError(t, s.AddDocuments(ctx, doc))

	got, err := s.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, doc.Permissions, got.Permissions)
	assert.Equal(t, doc.Vector, got.Vector)
}

func TestGetDocument_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddDocuments_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("empty id", func(t *testing.T) {
		err := s.AddDocuments(ctx, &store.Document{Collection: store.CollectionSearch})
		assert.ErrorIs(t, err, store.ErrEmptyDocumentId)
	})

	t.Run("unknown collection", func(t *testing.T) {
		err := s.AddDocuments(ctx, &store.Document{Id: "doc-1", Collection: "calendar"})
		assert.ErrorIs(t, err, store.ErrUnknownCollection)
	})
}

func TestGetByCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx,
		&store.Document{Id: "m-2", Collection: store.CollectionMessages, Content: "second"},
		&store.Document{Id: "m-1", Collection: store.CollectionMessages, Content: "first"},
		&store.Document{Id: "f-1", Collection: store.CollectionFiles, Content: "a file"},
	))

	messages, err := s.GetByCollection(ctx, store.CollectionMessages)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	// Iteration order over the index is key order, so ids come back sorted.
	assert.Equal(t, "m-1", messages[0].Id)
	assert.Equal(t, "m-2", messages[1].Id)

	empty, err := s.GetByCollection(ctx, store.CollectionLists)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAddDocuments_OverwriteMovesCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx,
		&store.Document{Id: "doc-1", Collection: store.CollectionSearch, Content: "v1"}))
	require.NoError(t, s.AddDocuments(ctx,
		&store.Document{Id: "doc-1", Collection: store.CollectionFiles, Content: "v2"}))

	searchDocs, err := s.GetByCollection(ctx, store.CollectionSearch)
	require.NoError(t, err)
	assert.Empty(t, searchDocs)

	fileDocs, err := s.GetByCollection(ctx, store.CollectionFiles)
	require.NoError(t, err)
	require.Len(t, fileDocs, 1)
	assert.Equal(t, "v2", fileDocs[0].Content)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFindSimilar(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx,
		&store.Document{Id: "exact", Collection: store.CollectionSearch, Content: "a", Vector: []float32{1, 0}},
		&store.Document{Id: "close", Collection: store.CollectionSearch, Content: "b", Vector: []float32{0.9, 0.43589}},
		&store.Document{Id: "orthogonal", Collection: store.CollectionSearch, Content: "c", Vector: []float32{0, 1}},
		&store.Document{Id: "no-vector", Collection: store.CollectionSearch, Content: "d"},
	))

	t.Run("threshold and ordering", func(t *testing.T) {
		results, err := s.FindSimilar(ctx, []float32{1, 0}, 0.7, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "exact", results[0].Document.Id)
		assert.Equal(t, "close", results[1].Document.Id)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := s.FindSimilar(ctx, []float32{1, 0}, 0.7, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "exact", results[0].Document.Id)
	})

	t.Run("nothing above threshold", func(t *testing.T) {
		results, err := s.FindSimilar(ctx, []float32{0, -1}, 0.7, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.AddDocuments(ctx,
		&store.Document{Id: "doc-1", Collection: store.CollectionSearch, Content: "a"},
		&store.Document{Id: "doc-2", Collection: store.CollectionLists, Content: "b"},
	))

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
