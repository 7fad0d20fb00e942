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


// Package ai provides the embedding capability consumed by the grounding
// pipeline.
//
// The package defines the Embedder interface and the process-wide
// EmbeddingCache that memoizes embeddings by content hash. It follows the
// dependency inversion principle: the pipeline depends on the Embedder
// abstraction, never on a concrete model client.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # EmbeddingCache
//
// The cache is the only state shared between concurrent pipeline
// invocations. It guarantees:
//
//   - a given input text always yields the same cached vector for the
//     lifetime of the cache
//   - at most one provider call per content hash, even under concurrent
//     requests (single flight)
//   - provider failures are surfaced to every waiter and never cached
//   - bounded memory via least-recently-used eviction
//
// # Usage Example
//
//	cfg := ai.DefaultConfig()
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, err := ai.NewEmbeddingCache(embedder, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vector, err := cache.GetOrCompute(ctx, "quarterly revenue summary")
package ai
