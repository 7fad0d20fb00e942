package retrieval

import (
	"context"

	"github.com/poiesic/grounder/core"
)

// Connector retrieves candidates for an expanded query on behalf of an
// identity. Implementations must be thread-safe for concurrent use.
type Connector interface {
	// Name returns the source tag stamped on every candidate this connector
	// produces.
	Name() core.SourceType

	// Search returns the connector's candidates for the query, plus warnings
	// for any partial failures that were isolated rather than fatal.
	Search(ctx context.Context, query string, identity *core.UserContext) (*Result, error)
}

// Result is the outcome of one connector search.
type Result struct {
	Source     core.SourceType
	Candidates []*core.Candidate
	// Warnings records sub-endpoint failures that contributed an empty
	// slice instead of aborting the search.
	Warnings []string
}

// DirectoryClient is the directory backend consumed by the directory
// connector: one fetch per sub-endpoint. A real deployment backs this with a
// directory/content API; tests and local corpora back it with a document
// store.
type DirectoryClient interface {
	// Fetch returns the raw documents one sub-endpoint holds for the query.
	// Returned candidates carry id, content, title, relevance score,
	// modified date, and security metadata but no source stamp.
	Fetch(ctx context.Context, endpoint string, query string) ([]*core.Candidate, error)
}

// SemanticIndex is the vector-search backend consumed by the semantic
// connector.
type SemanticIndex interface {
	// Query returns up to topK candidates whose vectors have cosine
	// similarity >= threshold with the query vector, best first. The
	// similarity is carried as each candidate's relevance score.
	Query(ctx context.Context, vector []float32, topK int, threshold float32) ([]*core.Candidate, error)
}
