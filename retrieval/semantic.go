package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/core"
)

const (
	// DefaultTopK is the default number of nearest vectors requested from
	// the index.
	DefaultTopK = 50
	// DefaultThreshold is the default minimum cosine similarity.
	DefaultThreshold = 0.7
)

// SemanticConnector embeds the expanded query through the shared embedding
// cache and asks the semantic index for the nearest vectors above the
// similarity threshold.
type SemanticConnector struct {
	cache     *ai.EmbeddingCache
	index     SemanticIndex
	topK      int
	threshold float32
	logger    *slog.Logger
}

var _ Connector = (*SemanticConnector)(nil)

// SemanticOption configures a SemanticConnector.
type SemanticOption func(*SemanticConnector) error

// WithTopK sets how many nearest vectors are requested.
// Default is DefaultTopK.
func WithTopK(topK int) SemanticOption {
	return func(s *SemanticConnector) error {
		if topK < 1 {
			return fmt.Errorf("topK must be positive, got %d", topK)
		}
		s.topK = topK
		return nil
	}
}

// WithThreshold sets the minimum cosine similarity for index hits.
// Default is DefaultThreshold.
func WithThreshold(threshold float32) SemanticOption {
	return func(s *SemanticConnector) error {
		s.threshold = threshold
		return nil
	}
}

// WithSemanticLogger sets a custom logger.
// Default is slog.Default().
func WithSemanticLogger(logger *slog.Logger) SemanticOption {
	return func(s *SemanticConnector) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "semantic-connector")
		return nil
	}
}

// NewSemanticConnector creates a semantic connector over the given cache and
// index.
func NewSemanticConnector(cache *ai.EmbeddingCache, index SemanticIndex, opts ...SemanticOption) (*SemanticConnector, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}

	s := &SemanticConnector{
		cache:     cache,
		index:     index,
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
		logger:    slog.Default().With("component", "semantic-connector"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Name returns the semantic source tag.
func (s *SemanticConnector) Name() core.SourceType {
	return core.SourceSemantic
}

// Search embeds the query and retrieves the nearest candidates. An embedding
// provider failure surfaces here and affects only this branch under the
// pipeline's fan-out isolation.
func (s *SemanticConnector) Search(ctx context.Context, query string, identity *core.UserContext) (*Result, error) {
	vector, err := s.cache.GetOrCompute(ctx, query)
	if err != nil {
		s.logger.Error("error embedding query", "err", err)
		return nil, err
	}

	hits, err := s.index.Query(ctx, vector, s.topK, s.threshold)
	if err != nil {
		s.logger.Error("error querying semantic index", "err", err)
		return nil, fmt.Errorf("%w: semantic index: %w", ErrConnector, err)
	}

	result := &Result{Source: core.SourceSemantic}
	for _, candidate := range hits {
		if candidate == nil {
			continue
		}
		candidate.SourceType = core.SourceSemantic
		candidate.RelevanceScore = core.SafeScore(candidate.RelevanceScore)
		result.Candidates = append(result.Candidates, candidate)
	}

	return result, nil
}
