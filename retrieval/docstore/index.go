package docstore

import (
	"context"

	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/retrieval"
	"github.com/poiesic/grounder/store"
)

// Index adapts the document store's vector scan to the semantic index
// consumed by the semantic connector.
type Index struct {
	docs store.DocumentStore
}

var _ retrieval.SemanticIndex = (*Index)(nil)

// NewIndex creates a store-backed semantic index.
func NewIndex(docs store.DocumentStore) (*Index, error) {
	if docs == nil {
		return nil, ErrStoreRequired
	}
	return &Index{docs: docs}, nil
}

// Query returns up to topK documents with similarity >= threshold against
// the query vector, best first. The similarity score becomes the
// candidate's relevance score.
func (x *Index) Query(ctx context.Context, vector []float32, topK int, threshold float32) ([]*core.Candidate, error) {
	scored, err := x.docs.FindSimilar(ctx, vector, threshold, topK)
	if err != nil {
		return nil, err
	}

	candidates := make([]*core.Candidate, 0, len(scored))
	for _, hit := range scored {
		candidates = append(candidates, hit.Document.Candidate(float64(hit.Score)))
	}
	return candidates, nil
}
