package docstore

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/retrieval"
	"github.com/poiesic/grounder/store"
)

// Client serves directory sub-endpoint fetches from the seeded document
// store. Each endpoint maps to one collection; candidates are scored by
// query word overlap and only matching documents are returned.
type Client struct {
	docs   store.DocumentStore
	logger *slog.Logger
}

var _ retrieval.DirectoryClient = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets a custom logger.
// Default is slog.Default().
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "docstore-client")
	}
}

// NewClient creates a store-backed directory client.
func NewClient(docs store.DocumentStore, opts ...ClientOption) (*Client, error) {
	if docs == nil {
		return nil, ErrStoreRequired
	}
	c := &Client{
		docs:   docs,
		logger: slog.Default().With("component", "docstore-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// collectionForEndpoint maps a directory endpoint path to the collection
// that backs it. User-scoped paths embed the user id, so matching is on
// the path shape rather than equality.
func collectionForEndpoint(endpoint string) (string, bool) {
	switch {
	case endpoint == "/search/query":
		return store.CollectionSearch, true
	case strings.HasPrefix(endpoint, "/users/") && strings.HasSuffix(endpoint, "/messages"):
		return store.CollectionMessages, true
	case strings.HasPrefix(endpoint, "/users/") && strings.HasSuffix(endpoint, "/drive/root/search"):
		return store.CollectionFiles, true
	case endpoint == "/sites/root/lists":
		return store.CollectionLists, true
	}
	return "", false
}

// Fetch returns the endpoint's documents that match the query, scored by
// query word overlap. Documents with no overlap are omitted.
func (c *Client) Fetch(ctx context.Context, endpoint, query string) ([]*core.Candidate, error) {
	collection, ok := collectionForEndpoint(endpoint)
	if !ok {
		return nil, ErrUnknownEndpoint
	}

	docs, err := c.docs.GetByCollection(ctx, collection)
	if err != nil {
		return nil, err
	}

	var candidates []*core.Candidate
	for _, doc := range docs {
		score := overlapScore(doc.Title+" "+doc.Content, query)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, doc.Candidate(score))
	}

	c.logger.Debug("endpoint fetch",
		"endpoint", endpoint,
		"collection", collection,
		"matched", len(candidates),
		"scanned", len(docs))
	return candidates, nil
}
