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


// Package grounding implements the retrieve-merge-rank-and-security-trim
// pipeline that grounds a prompt in an organization's content before it
// reaches a generative model.
//
// A Pipeline runs five stages in a fixed order:
//
//	Expand -> Retrieve (fan-out) -> Merge -> Trim -> Assemble
//
// Candidates are deduplicated by a content hash (first seen wins, with the
// directory connector registered ahead of the semantic one) and ranked by
// relevanceScore × sourceWeight with a stable descending sort. The Trimmer
// then enforces per-identity authorization: no content survives unless the
// requesting identity clears its sensitivity label, its explicit permission
// list, and its information barrier. Trimming runs strictly after ranking
// and before the top-K cut, and never reorders survivors.
//
// Retrieval branches are isolated: a connector or sub-endpoint failure
// contributes an empty candidate list and a Metadata warning instead of
// aborting the request, so callers can always distinguish partial retrieval
// failure from "no relevant content found".
package grounding
