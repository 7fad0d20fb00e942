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
	"log/slog"
	"slices"

	"github.com/poiesic/grounder/core"
)

// Trimmer removes candidates the requesting identity is not authorized to
// see. It is the security boundary of the whole pipeline: a strict filter
// that never reorders survivors, never fails on missing metadata, and
// evaluates every candidate independently.
//
// Three checks must all pass for a candidate to survive:
//
//  1. Sensitivity label: HighlyConfidential content requires the identity's
//     highly-confidential clearance. Absent or other labels pass.
//  2. Explicit permissions: a non-empty permission list admits only the
//     listed user id or an intersecting group. An absent list passes.
//  3. Information barrier: a barrier tag admits only identities cleared for
//     that barrier. An absent tag passes.
//
// Absence of all three means the content is visible to everyone. That
// default-allow posture matches the upstream directory semantics; deployments
// that want unclassified content suppressed instead opt into
// WithDenyUnclassified.
type Trimmer struct {
	denyUnclassified bool
	logger           *slog.Logger
}

// TrimmerOption configures a Trimmer.
type TrimmerOption func(*Trimmer)

// WithDenyUnclassified rejects candidates carrying no sensitivity label, no
// permission list, and no information barrier, inverting the default-allow
// posture for unclassified content.
func WithDenyUnclassified() TrimmerOption {
	return func(t *Trimmer) {
		t.denyUnclassified = true
	}
}

// WithTrimmerLogger sets a custom logger.
// Default is slog.Default().
func WithTrimmerLogger(logger *slog.Logger) TrimmerOption {
	return func(t *Trimmer) {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger.With("component", "trimmer")
	}
}

// NewTrimmer creates a security trimmer.
func NewTrimmer(opts ...TrimmerOption) *Trimmer {
	t := &Trimmer{
		logger: slog.Default().With("component", "trimmer"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trim filters candidates to those the identity may see, preserving order.
// A nil identity holds no clearances: restricted content is rejected,
// unrestricted content follows the configured default posture.
func (t *Trimmer) Trim(candidates []*core.Candidate, identity *core.UserContext) []*core.Candidate {
	survivors := make([]*core.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if t.Allowed(candidate, identity) {
			survivors = append(survivors, candidate)
		} else {
			t.logger.Debug("trimmed candidate", "id", candidate.Id, "source", candidate.SourceType)
		}
	}
	return survivors
}

// Allowed reports whether the identity passes all three authorization checks
// for the candidate.
func (t *Trimmer) Allowed(candidate *core.Candidate, identity *core.UserContext) bool {
	if t.denyUnclassified && candidate.SensitivityLabel == "" &&
		len(candidate.Permissions) == 0 && candidate.InformationBarrier == "" {
		return false
	}

	return sensitivityAllows(candidate, identity) &&
		permissionsAllow(candidate, identity) &&
		barrierAllows(candidate, identity)
}

// sensitivityAllows gates the HighlyConfidential label. Absence of a label,
// or any other label value, passes.
func sensitivityAllows(candidate *core.Candidate, identity *core.UserContext) bool {
	if candidate.SensitivityLabel != core.SensitivityHighlyConfidential {
		return true
	}
	return identity != nil && identity.Permissions.HighlyConfidentialAccess
}

// permissionsAllow checks the explicit permission list. An absent or empty
// list attaches no restriction.
func permissionsAllow(candidate *core.Candidate, identity *core.UserContext) bool {
	if len(candidate.Permissions) == 0 {
		return true
	}
	if identity == nil {
		return false
	}
	if identity.UserId != "" && slices.Contains(candidate.Permissions, identity.UserId) {
		return true
	}
	for _, group := range identity.Permissions.Groups {
		if slices.Contains(candidate.Permissions, group) {
			return true
		}
	}
	return false
}

// barrierAllows checks the information barrier tag. Absence passes.
func barrierAllows(candidate *core.Candidate, identity *core.UserContext) bool {
	if candidate.InformationBarrier == "" {
		return true
	}
	if identity == nil {
		return false
	}
	return slices.Contains(identity.Permissions.AllowedBarriers, candidate.InformationBarrier)
}
