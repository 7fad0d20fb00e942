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


package core

import (
	"fmt"
	"math"
)

// ValidateUserContext validates a UserContext according to domain rules.
//
// Validation rules:
//   - UserId must not be empty
//
// NOT validated (missing values render as "unknown" during query expansion):
//   - Role, Department, CurrentDate
//   - Permissions (empty permissions simply grant nothing)
func ValidateUserContext(identity *UserContext) error {
	if identity == nil {
		return fmt.Errorf("%w: identity is nil", ErrInvalidUserContext)
	}

	if identity.UserId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidUserContext, ErrEmptyUserId)
	}

	return nil
}

// ValidateCandidate validates a Candidate according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//
// NOT validated (handled by merger/trimmer default rules):
//   - Content (may be empty, collapses to EmptyContentKey)
//   - RelevanceScore (non-finite values are treated as zero)
//   - ACL metadata (absence means "not restricted")
func ValidateCandidate(candidate *Candidate) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if candidate.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyCandidateId)
	}

	return nil
}

// SafeScore maps a relevance score to a finite non-negative value. Missing or
// malformed scores rank as zero rather than failing.
func SafeScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	return score
}
