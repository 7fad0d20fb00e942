// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/poiesic/grounder/core"
	"golang.org/x/sync/singleflight"
)

// EmbeddingCache memoizes Embedder calls by content hash. It is the only
// state shared across pipeline invocations, so all access is safe for
// concurrent use. Lookups are keyed by core.KeyFromContent of the input text;
// stored vectors are unit-normalized and have the configured dimensionality.
//
// Concurrent callers requesting the same uncomputed key trigger exactly one
// provider call and all receive the same resulting vector. Provider failures
// propagate to every waiter for that key and are not cached, so the next call
// retries. Capacity is bounded with least-recently-used eviction.
type EmbeddingCache struct {
	embedder Embedder
	dims     int
	maxSize  int
	logger   *slog.Logger

	flight singleflight.Group

	mu      sync.Mutex
	entries map[core.Key]*list.Element
	lruList *list.List
	hits    uint64
	misses  uint64
}

// cacheEntry is one resident embedding, tracked by the LRU list.
type cacheEntry struct {
	key    core.Key
	vector []float32
}

// CacheOption configures an EmbeddingCache.
type CacheOption func(*EmbeddingCache) error

// WithCacheLogger sets a custom logger.
// Default is slog.Default().
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *EmbeddingCache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "embedding-cache")
		return nil
	}
}

// NewEmbeddingCache creates a cache in front of the given embedder.
// Dimensionality and capacity come from cfg; a nil cfg uses DefaultConfig.
func NewEmbeddingCache(embedder Embedder, cfg *Config, opts ...CacheOption) (*EmbeddingCache, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &EmbeddingCache{
		embedder: embedder,
		dims:     cfg.Dimensions,
		maxSize:  cfg.CacheEntries,
		logger:   slog.Default().With("component", "embedding-cache"),
		entries:  make(map[core.Key]*list.Element),
		lruList:  list.New(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Dimensions returns the dimensionality every cached vector has.
func (c *EmbeddingCache) Dimensions() int {
	return c.dims
}

// GetOrCompute returns the unit-normalized embedding for text, invoking the
// underlying embedder at most once per content hash. A cancelled caller
// detaches from the shared computation; the computation itself continues for
// any other waiters and, on success, still populates the cache.
func (c *EmbeddingCache) GetOrCompute(ctx context.Context, text string) ([]float32, error) {
	key := core.KeyFromContent(text)

	if vector, ok := c.lookup(key); ok {
		return vector, nil
	}

	// The provider call runs detached from any single caller's context so
	// cancellation of one waiter cannot fail or corrupt the shared flight.
	detached := context.WithoutCancel(ctx)
	flightKey := strconv.FormatUint(uint64(key), 16)

	ch := c.flight.DoChan(flightKey, func() (any, error) {
		return c.compute(detached, key, text)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

// compute embeds text, normalizes the result, and stores it under key.
func (c *EmbeddingCache) compute(ctx context.Context, key core.Key, text string) ([]float32, error) {
	raw, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		c.logger.Error("embedding provider call failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	if len(raw) != c.dims {
		c.logger.Error("provider returned wrong dimensionality", "want", c.dims, "got", len(raw))
		return nil, fmt.Errorf("%w: want %d, got %d", ErrDimensionMismatch, c.dims, len(raw))
	}

	vector := NormalizeVector(raw)
	c.store(key, vector)
	return vector, nil
}

// lookup returns the cached vector for key and marks it most recently used.
func (c *EmbeddingCache) lookup(key core.Key) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	c.lruList.MoveToFront(element)
	c.hits++
	return element.Value.(*cacheEntry).vector, true
}

// store inserts a vector, evicting the least recently used entry when full.
func (c *EmbeddingCache) store(key core.Key, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		// A concurrent flight already stored this key.
		c.lruList.MoveToFront(element)
		return
	}

	for len(c.entries) >= c.maxSize {
		oldest := c.lruList.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(*cacheEntry)
		c.lruList.Remove(oldest)
		delete(c.entries, evicted.key)
		c.logger.Debug("evicted embedding", "key", evicted.key)
	}

	c.entries[key] = c.lruList.PushFront(&cacheEntry{key: key, vector: vector})
}

// Len returns the number of resident embeddings.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the cumulative lookup hit and miss counts.
func (c *EmbeddingCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
