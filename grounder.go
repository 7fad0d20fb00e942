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


package grounder

import (
	"context"
	"log/slog"

	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/ai/openai"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/grounding"
	"github.com/poiesic/grounder/ingest"
	"github.com/poiesic/grounder/retrieval"
	"github.com/poiesic/grounder/retrieval/docstore"
	"github.com/poiesic/grounder/store"
	storebadger "github.com/poiesic/grounder/store/badger"
)

// Grounder is the root facade: it opens the document store and wires the
// embedder, embedding cache, retrieval connectors, and grounding pipeline
// into one handle.
type Grounder struct {
	docs      store.DocumentStore
	embedder  ai.Embedder
	cache     *ai.EmbeddingCache
	directory *retrieval.DirectoryConnector
	semantic  *retrieval.SemanticConnector
	pipeline  *grounding.Pipeline
	logger    *slog.Logger
}

// Option configures a Grounder.
type Option func(*options)

type options struct {
	aiConfig       *ai.Config
	pipelineConfig *grounding.Config
	trimmer        *grounding.Trimmer
	embedder       ai.Embedder
	inMemory       bool
}

// WithAIConfig sets the embedding provider and cache configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithPipelineConfig sets the ranking and assembly configuration.
// Default is grounding.DefaultConfig().
func WithPipelineConfig(cfg *grounding.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.pipelineConfig = cfg
		}
	}
}

// WithSecurityTrimmer sets a custom security trimmer, e.g. one built with
// grounding.WithDenyUnclassified.
func WithSecurityTrimmer(trimmer *grounding.Trimmer) Option {
	return func(o *options) {
		o.trimmer = trimmer
	}
}

// WithEmbedder injects an embedder instead of the langchaingo-backed
// default. Used by tests and alternative providers.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *options) {
		o.embedder = embedder
	}
}

// WithInMemoryStore keeps the document store in memory instead of on disk.
// The store path is ignored.
func WithInMemoryStore() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// New opens the store at filePath and wires the full grounding stack.
// Configuration problems surface here, never at request time.
func New(filePath string, opts ...Option) (*Grounder, error) {
	o := &options{
		aiConfig:       ai.DefaultConfig(),
		pipelineConfig: grounding.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}

	backend, err := storebadger.OpenBackend(filePath, o.inMemory)
	if err != nil {
		return nil, err
	}
	docs := storebadger.NewStore(backend)

	embedder := o.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(o.aiConfig)
		if err != nil {
			docs.Close()
			return nil, err
		}
	}

	cache, err := ai.NewEmbeddingCache(embedder, o.aiConfig)
	if err != nil {
		docs.Close()
		return nil, err
	}

	client, err := docstore.NewClient(docs)
	if err != nil {
		docs.Close()
		return nil, err
	}

	directory, err := retrieval.NewDirectoryConnector(client)
	if err != nil {
		docs.Close()
		return nil, err
	}

	index, err := docstore.NewIndex(docs)
	if err != nil {
		directory.Release()
		docs.Close()
		return nil, err
	}

	semantic, err := retrieval.NewSemanticConnector(cache, index)
	if err != nil {
		directory.Release()
		docs.Close()
		return nil, err
	}

	// Directory before semantic: concatenation order decides which duplicate
	// survives the merge.
	pipelineOpts := []grounding.PipelineOption{grounding.WithConfig(o.pipelineConfig)}
	if o.trimmer != nil {
		pipelineOpts = append(pipelineOpts, grounding.WithTrimmer(o.trimmer))
	}
	pipeline, err := grounding.NewPipeline(
		[]retrieval.Connector{directory, semantic}, pipelineOpts...)
	if err != nil {
		directory.Release()
		docs.Close()
		return nil, err
	}

	return &Grounder{
		docs:      docs,
		embedder:  embedder,
		cache:     cache,
		directory: directory,
		semantic:  semantic,
		pipeline:  pipeline,
		logger:    slog.Default(),
	}, nil
}

// Process grounds the prompt for the identity.
func (g *Grounder) Process(ctx context.Context, prompt string, identity *core.UserContext) (*core.GroundedResult, error) {
	return g.pipeline.Process(ctx, prompt, identity)
}

// ProcessWithMonitor grounds the prompt with stage callbacks.
func (g *Grounder) ProcessWithMonitor(ctx context.Context, prompt string, identity *core.UserContext, monitor grounding.PipelineMonitor) (*core.GroundedResult, error) {
	return g.pipeline.ProcessWithMonitor(ctx, prompt, identity, monitor)
}

// Store returns the underlying document store.
func (g *Grounder) Store() store.DocumentStore {
	return g.docs
}

// CacheStats returns the embedding cache hit and miss counters.
func (g *Grounder) CacheStats() (hits, misses uint64) {
	return g.cache.Stats()
}

// NewSeeder creates a corpus seeder over the grounder's store and embedder.
func (g *Grounder) NewSeeder(opts ...ingest.SeederOption) (*ingest.Seeder, error) {
	return ingest.NewSeeder(g.docs, g.embedder, opts...)
}

// Close releases the pipeline and connector pools and closes the store.
func (g *Grounder) Close() error {
	g.pipeline.Release()
	g.directory.Release()

	if err := g.docs.Close(); err != nil {
		g.logger.Error("error closing document store", "err", err)
		return err
	}
	return nil
}
