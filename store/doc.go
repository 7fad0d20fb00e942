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


// Package store provides the storage abstraction for the seeded
// organizational corpus.
//
// It defines the Document model, the DocumentStore interface that
// decouples storage implementation from retrieval logic, and the MUS
// serialization of stored documents. The badger subpackage provides the
// production implementation.
//
// Documents carry the access control metadata the security trimmer
// evaluates; the store itself performs no authorization and returns
// whatever matches a query. Trimming happens downstream, after merge and
// rank.
//
// All store implementations must be thread-safe, and all methods accept
// a context.Context for cancellation.
package store
