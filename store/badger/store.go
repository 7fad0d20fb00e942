package badger

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/grounder/store"
)

// Store implements store.DocumentStore for BadgerDB.
type Store struct {
	backend *Backend
}

var _ store.DocumentStore = (*Store)(nil)

// NewStore creates a document store over an open backend.
func NewStore(backend *Backend) *Store {
	return &Store{backend: backend}
}

// AddDocuments adds one or more documents to storage. Documents with the
// same id are overwritten together with their collection index entry.
func (s *Store) AddDocuments(ctx context.Context, docs ...*store.Document) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.Id == "" {
				return store.ErrEmptyDocumentId
			}
			if !slices.Contains(store.Collections(), doc.Collection) {
				return fmt.Errorf("%w: %q", store.ErrUnknownCollection, doc.Collection)
			}

			key := makeDocumentKey(doc.Id)

			// Clean the old collection index entry if the document moved.
			old, err := s.readDocument(tx, key)
			if err != nil {
				return err
			}
			if old != nil && old.Collection != doc.Collection {
				if err := tx.Delete(makeCollectionKey(old.Collection, old.Id)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, store.MarshalDocument(doc)); err != nil {
				return err
			}
			colKey := makeCollectionKey(doc.Collection, doc.Id)
			if err := tx.Set(colKey, []byte(doc.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*store.Document, error) {
	var result *store.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = s.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return store.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetByCollection retrieves all documents in a collection, ordered by id.
func (s *Store) GetByCollection(ctx context.Context, collection string) ([]*store.Document, error) {
	var results []*store.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialCollectionKey(collection)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id string
			if err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			doc, err := s.readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// FindSimilar finds documents whose vectors are similar to the given vector.
// Similarity is the dot product, which equals cosine similarity for unit
// vectors. Documents without a vector are skipped.
func (s *Store) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*store.ScoredDocument, error) {
	var results []*store.ScoredDocument

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			// The collection index shares no prefix with documents, but
			// guard anyway.
			if !bytes.HasPrefix(item.Key(), []byte(documentPrefix+":")) {
				continue
			}

			var doc *store.Document
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = store.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil || len(doc.Vector) == 0 {
				continue
			}

			similarity := dotProduct(vector, doc.Vector)
			if similarity >= minSimilarity {
				results = append(results, &store.ScoredDocument{
					Document: doc,
					Score:    similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *store.ScoredDocument) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// readDocument reads a document from the transaction.
// Returns nil without error when the key is absent.
func (s *Store) readDocument(tx *badger.Txn, key []byte) (*store.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *store.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = store.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
