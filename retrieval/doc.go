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


// Package retrieval provides the source connectors that feed the grounding
// pipeline.
//
// Two connector variants exist:
//
//   - DirectoryConnector fans out across the directory backend's
//     sub-endpoints and concatenates their results in fixed order.
//   - SemanticConnector embeds the query via the shared embedding cache and
//     performs nearest-vector search against a semantic index.
//
// Both depend only on the DirectoryClient and SemanticIndex capability
// interfaces; the actual network backends live outside this module. The
// retrieval/mock package provides test doubles and retrieval/docstore backs
// both capabilities with a local document store.
package retrieval
