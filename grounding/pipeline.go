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


package grounding

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/retrieval"
)

// Pipeline grounds a prompt in organizational content: it expands the query,
// fans out to the registered connectors, merges and ranks the candidates,
// security-trims them for the requesting identity, and assembles the bounded
// grounded prompt. The stages always run in that order and none is skipped.
//
// Pipelines are safe for concurrent use; the embedding cache inside the
// semantic connector is the only state shared between invocations.
type Pipeline struct {
	connectors []retrieval.Connector
	merger     *Merger
	trimmer    *Trimmer
	cfg        *Config
	pool       *ants.Pool
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithConfig sets the ranking and assembly configuration.
// Default is DefaultConfig().
func WithConfig(cfg *Config) PipelineOption {
	return func(p *Pipeline) error {
		if cfg == nil {
			cfg = DefaultConfig()
		}
		p.cfg = cfg
		return nil
	}
}

// WithTrimmer sets a custom security trimmer, e.g. one built with
// WithDenyUnclassified. Default is NewTrimmer().
func WithTrimmer(trimmer *Trimmer) PipelineOption {
	return func(p *Pipeline) error {
		if trimmer == nil {
			trimmer = NewTrimmer()
		}
		p.trimmer = trimmer
		return nil
	}
}

// WithPoolSize sets the worker pool size for the connector fan-out.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) PipelineOption {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a grounding pipeline over the given connectors.
// Connector registration order is the merge concatenation order; register
// the directory connector before the semantic one so first-seen wins on
// duplicate content. Configuration problems are fatal here, never at
// request time.
func NewPipeline(connectors []retrieval.Connector, opts ...PipelineOption) (*Pipeline, error) {
	if len(connectors) == 0 {
		return nil, ErrConnectorsRequired
	}
	for _, connector := range connectors {
		if connector == nil {
			return nil, fmt.Errorf("%w: nil connector", ErrConnectorsRequired)
		}
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		connectors: connectors,
		cfg:        DefaultConfig(),
		trimmer:    NewTrimmer(),
		pool:       pool,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if err := p.cfg.Validate(); err != nil {
		p.Release()
		return nil, err
	}

	p.merger = NewMerger(p.cfg.SourceWeights, p.logger)
	return p, nil
}

// Process grounds the prompt for the identity.
// The caller always receives a result, possibly with zero sources; partial
// retrieval failures surface in Metadata.Warnings rather than as errors.
// Only cancellation of ctx aborts the request.
func (p *Pipeline) Process(ctx context.Context, prompt string, identity *core.UserContext) (*core.GroundedResult, error) {
	return p.ProcessWithMonitor(ctx, prompt, identity, nil)
}

// ProcessWithMonitor grounds the prompt with stage callbacks.
func (p *Pipeline) ProcessWithMonitor(ctx context.Context, prompt string, identity *core.UserContext, monitor PipelineMonitor) (*core.GroundedResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(prompt)

	// 1. Query understanding and expansion
	query := ExpandQuery(prompt, identity)
	monitor.AfterExpand(query)

	// 2. Retrieval fan-out: collect-all, never first-wins
	branches := p.retrieve(ctx, query, identity, monitor)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metadata := core.Metadata{}
	streams := make([][]*core.Candidate, len(branches))
	for i, branch := range branches {
		streams[i] = branch.Candidates
		metadata.Warnings = append(metadata.Warnings, branch.Warnings...)
		switch branch.Source {
		case core.SourceDirectory:
			metadata.RetrievedFromDirectory += len(branch.Candidates)
		case core.SourceSemantic:
			metadata.RetrievedFromSemantic += len(branch.Candidates)
		}
	}

	// 3. Merge, dedup, rank
	merged := p.merger.Merge(streams...)
	metadata.AfterDedupAndRank = len(merged)
	monitor.AfterMerge(merged)

	// 4. Security trimming, strictly after ranking and before the top-K cut
	trimmed := p.trimmer.Trim(merged, identity)
	metadata.AfterSecurityTrim = len(trimmed)
	monitor.AfterTrim(trimmed)

	// 5. Grounded prompt assembly
	groundedPrompt, sources := AssemblePrompt(prompt, trimmed, p.cfg.MaxSources, p.cfg.SnippetLength)

	result := &core.GroundedResult{
		GroundedPrompt: groundedPrompt,
		Sources:        sources,
		Metadata:       metadata,
	}
	monitor.Finish(result)

	p.logger.Debug("grounded prompt",
		"directory", metadata.RetrievedFromDirectory,
		"semantic", metadata.RetrievedFromSemantic,
		"ranked", metadata.AfterDedupAndRank,
		"trimmed", metadata.AfterSecurityTrim,
		"warnings", len(metadata.Warnings))
	return result, nil
}

// retrieve runs every connector concurrently and waits for all branches. A
// branch that fails contributes an empty result plus a warning; it never
// aborts the request.
func (p *Pipeline) retrieve(ctx context.Context, query string, identity *core.UserContext, monitor PipelineMonitor) []*retrieval.Result {
	var wg sync.WaitGroup
	results := make([]*retrieval.Result, len(p.connectors))

	for i, connector := range p.connectors {
		wg.Add(1)
		run := func() {
			defer wg.Done()
			result, err := connector.Search(ctx, query, identity)
			if err != nil {
				p.logger.Warn("retrieval branch failed", "source", connector.Name(), "err", err)
				monitor.BranchFailed(connector.Name(), err)
				results[i] = &retrieval.Result{
					Source:   connector.Name(),
					Warnings: []string{fmt.Sprintf("%s: %v", connector.Name(), err)},
				}
				return
			}
			monitor.AfterRetrieve(connector.Name(), len(result.Candidates))
			results[i] = result
		}
		if err := p.pool.Submit(run); err != nil {
			// Pool unavailable, run the branch on the caller's goroutine.
			run()
		}
	}
	wg.Wait()

	return results
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
