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
	"fmt"
	"math"

	"github.com/poiesic/grounder/core"
)

// Config holds the ranking and assembly parameters of a pipeline.
type Config struct {
	// SourceWeights is the per-source ranking multiplier table.
	// Default: directory=1.0, semantic=0.8.
	SourceWeights map[core.SourceType]float64

	// MaxSources is how many surviving candidates the grounded prompt cites.
	// Default: 5
	MaxSources int

	// SnippetLength is the character cap applied to each cited content
	// snippet. Default: 500
	SnippetLength int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithSourceWeight sets the ranking multiplier for one source type.
func WithSourceWeight(source core.SourceType, weight float64) ConfigOption {
	return func(c *Config) {
		c.SourceWeights[source] = weight
	}
}

// WithMaxSources sets how many sources the grounded prompt cites.
func WithMaxSources(maxSources int) ConfigOption {
	return func(c *Config) {
		c.MaxSources = maxSources
	}
}

// WithSnippetLength sets the character cap for cited content snippets.
func WithSnippetLength(length int) ConfigOption {
	return func(c *Config) {
		c.SnippetLength = length
	}
}

// DefaultConfig returns a Config with the default weight table and limits.
func DefaultConfig() *Config {
	return &Config{
		SourceWeights: map[core.SourceType]float64{
			core.SourceDirectory: 1.0,
			core.SourceSemantic:  0.8,
		},
		MaxSources:    5,
		SnippetLength: 500,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is valid and complete.
// Validation failures wrap ErrConfiguration and are fatal at construction.
func (c *Config) Validate() error {
	if len(c.SourceWeights) == 0 {
		return fmt.Errorf("%w: source weight table is empty", ErrConfiguration)
	}
	for source, weight := range c.SourceWeights {
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("%w: weight for %q must be a finite non-negative number", ErrConfiguration, source)
		}
	}
	if c.MaxSources <= 0 {
		return fmt.Errorf("%w: MaxSources must be positive", ErrConfiguration)
	}
	if c.SnippetLength <= 0 {
		return fmt.Errorf("%w: SnippetLength must be positive", ErrConfiguration)
	}
	return nil
}
