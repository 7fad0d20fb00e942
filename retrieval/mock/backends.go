package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/grounder/core"
)

// MockDirectoryClient is a test double for retrieval.DirectoryClient.
// It allows custom behavior injection via function fields.
type MockDirectoryClient struct {
	// FetchFunc is called by Fetch if set.
	// If nil, serves from Documents keyed by endpoint suffix.
	FetchFunc func(ctx context.Context, endpoint, query string) ([]*core.Candidate, error)

	// Documents maps an endpoint suffix (e.g. "messages") to the candidates
	// served for any query against that endpoint.
	Documents map[string][]*core.Candidate

	callCount atomic.Int64
}

// NewMockDirectoryClient creates a mock client with an empty document set.
func NewMockDirectoryClient() *MockDirectoryClient {
	return &MockDirectoryClient{Documents: make(map[string][]*core.Candidate)}
}

// Fetch serves documents for the endpoint, or delegates to FetchFunc.
func (m *MockDirectoryClient) Fetch(ctx context.Context, endpoint, query string) ([]*core.Candidate, error) {
	m.callCount.Add(1)

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, endpoint, query)
	}

	for suffix, docs := range m.Documents {
		if strings.HasSuffix(endpoint, suffix) {
			return cloneCandidates(docs), nil
		}
	}
	return nil, nil
}

// CallCount returns the number of Fetch invocations.
func (m *MockDirectoryClient) CallCount() int {
	return int(m.callCount.Load())
}

// MockSemanticIndex is a test double for retrieval.SemanticIndex.
type MockSemanticIndex struct {
	// QueryFunc is called by Query if set.
	// If nil, returns Hits truncated to topK.
	QueryFunc func(ctx context.Context, vector []float32, topK int, threshold float32) ([]*core.Candidate, error)

	// Hits are returned for any query, best first.
	Hits []*core.Candidate

	callCount atomic.Int64
}

// NewMockSemanticIndex creates a mock index with no hits.
func NewMockSemanticIndex() *MockSemanticIndex {
	return &MockSemanticIndex{}
}

// Query returns the configured hits, or delegates to QueryFunc.
func (m *MockSemanticIndex) Query(ctx context.Context, vector []float32, topK int, threshold float32) ([]*core.Candidate, error) {
	m.callCount.Add(1)

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, vector, topK, threshold)
	}

	hits := cloneCandidates(m.Hits)
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// CallCount returns the number of Query invocations.
func (m *MockSemanticIndex) CallCount() int {
	return int(m.callCount.Load())
}

// cloneCandidates copies candidates so connector stamping never mutates the
// fixtures shared between test cases.
func cloneCandidates(candidates []*core.Candidate) []*core.Candidate {
	cloned := make([]*core.Candidate, len(candidates))
	for i, candidate := range candidates {
		if candidate == nil {
			continue
		}
		copied := *candidate
		cloned[i] = &copied
	}
	return cloned
}
