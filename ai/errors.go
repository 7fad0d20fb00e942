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

import "errors"

var (
	// ErrProvider indicates the embedding backend failed or returned an
	// invalid result. Check with errors.Is.
	ErrProvider = errors.New("embedding provider failure")

	// ErrDimensionMismatch indicates the provider returned a vector whose
	// length differs from the configured dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidConfig indicates malformed AI configuration. It is fatal at
	// construction time, never at request time.
	ErrInvalidConfig = errors.New("invalid ai config")
)
