package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/store"
)

const (
	defaultBatchSize   = 16
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// Seeder ingests corpus documents into the store: it embeds document
// content in batches, normalizes the vectors so the store's dot product
// scan equals cosine similarity, and persists the documents.
type Seeder struct {
	docs        store.DocumentStore
	embedder    ai.Embedder
	pool        *ants.Pool
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder) error

// WithSeederPoolSize sets the worker pool size for batch embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithSeederPoolSize(size int) SeederOption {
	return func(s *Seeder) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per provider call.
// Default is 16.
func WithBatchSize(size int) SeederOption {
	return func(s *Seeder) error {
		if size < 1 {
			size = 1
		}
		s.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
// Default is 3 attempts with a 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) SeederOption {
	return func(s *Seeder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		s.maxAttempts = maxAttempts
		s.baseDelay = baseDelay
		return nil
	}
}

// WithSeederLogger sets a custom logger.
// Default is slog.Default().
func WithSeederLogger(logger *slog.Logger) SeederOption {
	return func(s *Seeder) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "seeder")
		return nil
	}
}

// NewSeeder creates a seeder over the given store and embedder.
func NewSeeder(docs store.DocumentStore, embedder ai.Embedder, opts ...SeederOption) (*Seeder, error) {
	if docs == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Seeder{
		docs:        docs,
		embedder:    embedder,
		pool:        pool,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "seeder"),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// Seed embeds and stores the documents. Batches run concurrently; every
// batch is attempted even when another fails, and the collected failures
// come back joined. The returned count is the number of documents stored.
func (s *Seeder) Seed(ctx context.Context, docs []*store.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	batches := s.split(docs)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var stored int
	failures := make([]error, len(batches))

	for i, batch := range batches {
		wg.Add(1)
		run := func() {
			defer wg.Done()
			if err := s.seedBatch(ctx, batch); err != nil {
				failures[i] = err
				return
			}
			mu.Lock()
			stored += len(batch)
			mu.Unlock()
		}
		if err := s.pool.Submit(run); err != nil {
			// Pool unavailable, run the batch on the caller's goroutine.
			run()
		}
	}
	wg.Wait()

	err := errors.Join(failures...)
	s.logger.Info("corpus seeded", "documents", stored, "batches", len(batches), "failed", countErrors(failures))
	return stored, err
}

// seedBatch embeds one batch with retry, normalizes the vectors, and
// persists the documents.
func (s *Seeder) seedBatch(ctx context.Context, batch []*store.Document) error {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Content
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = s.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, s.maxAttempts, s.baseDelay)
	if err != nil {
		return err
	}

	if len(embeddings) != len(batch) {
		return ErrEmbeddingMismatch
	}

	for i, doc := range batch {
		doc.Vector = ai.NormalizeVector(embeddings[i])
	}

	return s.docs.AddDocuments(ctx, batch...)
}

// split partitions docs into batches of at most batchSize.
func (s *Seeder) split(docs []*store.Document) [][]*store.Document {
	var batches [][]*store.Document
	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end])
	}
	return batches
}

func countErrors(errs []error) int {
	count := 0
	for _, err := range errs {
		if err != nil {
			count++
		}
	}
	return count
}

// Release releases the worker pool.
// The seeder should not be used after calling Release.
func (s *Seeder) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}
