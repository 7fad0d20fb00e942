package grounding

import (
	"log/slog"
	"sort"

	"github.com/poiesic/grounder/core"
)

// Merger deduplicates and ranks candidates across all connectors. It is a
// total function over well-typed input: malformed optional fields fall back
// to the default rules (missing score ranks as zero, unknown source types
// weigh 1.0), never to an error.
type Merger struct {
	weights map[core.SourceType]float64
	logger  *slog.Logger
}

// NewMerger creates a merger using the given per-source weight table.
func NewMerger(weights map[core.SourceType]float64, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		weights: weights,
		logger:  logger.With("component", "merger"),
	}
}

// Merge concatenates the streams in the order given (the pipeline passes
// directory before semantic), assigns source weights, drops content
// duplicates keeping the first occurrence, and stable-sorts descending by
// relevance × weight. Ties preserve pre-sort relative order, so an
// earlier-stream candidate always outranks an equal-scoring later one.
func (m *Merger) Merge(streams ...[]*core.Candidate) []*core.Candidate {
	var total int
	for _, stream := range streams {
		total += len(stream)
	}

	seen := make(map[core.Key]bool, total)
	merged := make([]*core.Candidate, 0, total)

	for _, stream := range streams {
		for _, candidate := range stream {
			if candidate == nil {
				continue
			}

			candidate.SourceWeight = m.weightFor(candidate.SourceType)
			candidate.RelevanceScore = core.SafeScore(candidate.RelevanceScore)

			key := candidate.ContentKey()
			if seen[key] {
				// Duplicate content from a later connector, dropped silently.
				continue
			}
			seen[key] = true
			merged = append(merged, candidate)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RankScore() > merged[j].RankScore()
	})

	m.logger.Debug("merged candidate streams", "streams", len(streams), "in", total, "out", len(merged))
	return merged
}

// weightFor looks up the configured multiplier, defaulting to 1.0 for source
// types missing from the table.
func (m *Merger) weightFor(source core.SourceType) float64 {
	if weight, ok := m.weights[source]; ok {
		return weight
	}
	return 1.0
}
