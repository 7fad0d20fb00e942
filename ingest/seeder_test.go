package ingest

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/grounder/ai/mock"
	"github.com/poiesic/grounder/store"
	storebadger "github.com/poiesic/grounder/store/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryStore(t *testing.T) *storebadger.Store {
	t.Helper()
	s, err := storebadger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func corpusDocs(n int) []*store.Document {
	docs := make([]*store.Document, n)
	for i := range docs {
		docs[i] = &store.Document{
			Id:         "doc-" + string(rune('a'+i)),
			Collection: store.CollectionSearch,
			Content:    "content " + string(rune('a'+i)),
		}
	}
	return docs
}

func TestNewSeeder(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewSeeder(nil, mock.NewMockEmbedder())
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSeeder(memoryStore(t), nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("invalid retry option", func(t *testing.T) {
		_, err := NewSeeder(memoryStore(t), mock.NewMockEmbedder(), WithRetry(0, time.Millisecond))
		assert.Equal(t, ErrInvalidMaxAttempts, err)
	})
}

func TestSeed(t *testing.T) {
	s := memoryStore(t)
	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 4

	seeder, err := NewSeeder(s, embedder)
	require.NoError(t, err)
	defer seeder.Release()

	ctx := context.Background()
	stored, err := seeder.Seed(ctx, corpusDocs(5))
	require.NoError(t, err)
	assert.Equal(t, 5, stored)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// Vectors are persisted unit-normalized.
	doc, err := s.GetDocument(ctx, "doc-a")
	require.NoError(t, err)
	require.Len(t, doc.Vector, 4)
	var norm float64
	for _, v := range doc.Vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestSeed_EmptyCorpus(t *testing.T) {
	seeder, err := NewSeeder(memoryStore(t), mock.NewMockEmbedder())
	require.NoError(t, err)
	defer seeder.Release()

	stored, err := seeder.Seed(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, stored)
}

func TestSeed_BatchFailureDoesNotAbortOthers(t *testing.T) {
	s := memoryStore(t)
	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 4

	var calls atomic.Int64
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("provider unavailable")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0, 0}
		}
		return vectors, nil
	}

	// Batch size 2 over 4 docs gives two batches; the retry budget of one
	// attempt makes the first embedding call a hard batch failure.
	seeder, err := NewSeeder(s, embedder,
		WithBatchSize(2),
		WithSeederPoolSize(1),
		WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	defer seeder.Release()

	ctx := context.Background()
	stored, err := seeder.Seed(ctx, corpusDocs(4))
	require.Error(t, err)
	assert.Equal(t, 2, stored)

	count, countErr := s.Count(ctx)
	require.NoError(t, countErr)
	assert.Equal(t, 2, count)
}

func TestSeed_RetriesEmbedding(t *testing.T) {
	s := memoryStore(t)
	embedder := mock.NewMockEmbedder()

	var calls atomic.Int64
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("transient")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{0, 1}
		}
		return vectors, nil
	}

	seeder, err := NewSeeder(s, embedder, WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	defer seeder.Release()

	stored, err := seeder.Seed(context.Background(), corpusDocs(2))
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, int64(2), calls.Load())
}

func TestSeed_EmbeddingMismatch(t *testing.T) {
	s := memoryStore(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	seeder, err := NewSeeder(s, embedder, WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	defer seeder.Release()

	_, err = seeder.Seed(context.Background(), corpusDocs(3))
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
}
