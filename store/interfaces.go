package store

import (
	"context"
)

// ScoredDocument pairs a stored document with its similarity score
// against a query vector.
type ScoredDocument struct {
	Document *Document
	Score    float32
}

// DocumentStore provides operations for the seeded organizational corpus.
// Implementations must be thread-safe and support concurrent access.
type DocumentStore interface {
	// AddDocuments adds one or more documents to storage. Documents must
	// carry a non-empty id and a known collection; existing documents with
	// the same id are overwritten.
	AddDocuments(ctx context.Context, docs ...*Document) error

	// GetDocument retrieves a single document by id.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*Document, error)

	// GetByCollection retrieves all documents in a collection, ordered by id.
	GetByCollection(ctx context.Context, collection string) ([]*Document, error)

	// FindSimilar finds documents whose vectors are similar to the given
	// vector. Returns documents with similarity >= minSimilarity, up to
	// limit results, ordered by similarity score (highest first).
	// Documents without a vector are skipped.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*ScoredDocument, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
