package grounding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConnector is a minimal retrieval.Connector for pipeline tests.
type stubConnector struct {
	source     core.SourceType
	candidates []*core.Candidate
	warnings   []string
	err        error
}

func (s *stubConnector) Name() core.SourceType { return s.source }

func (s *stubConnector) Search(ctx context.Context, query string, identity *core.UserContext) (*retrieval.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	// Stamp like real connectors do.
	for _, candidate := range s.candidates {
		candidate.SourceType = s.source
	}
	return &retrieval.Result{Source: s.source, Candidates: s.candidates, Warnings: s.warnings}, nil
}

// recordingMonitor captures stage callbacks for assertions. Retrieval
// callbacks arrive from pool goroutines, so appends are locked.
type recordingMonitor struct {
	mu       sync.Mutex
	stages   []string
	failures []core.SourceType
}

func (r *recordingMonitor) record(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *recordingMonitor) Start(string)                       { r.record("start") }
func (r *recordingMonitor) AfterExpand(string)                 { r.record("expand") }
func (r *recordingMonitor) AfterRetrieve(core.SourceType, int) { r.record("retrieve") }
func (r *recordingMonitor) BranchFailed(s core.SourceType, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, s)
}
func (r *recordingMonitor) AfterMerge([]*core.Candidate) { r.record("merge") }
func (r *recordingMonitor) AfterTrim([]*core.Candidate)  { r.record("trim") }
func (r *recordingMonitor) Finish(*core.GroundedResult)  { r.record("finish") }

func newTestPipeline(t *testing.T, directory, semantic *stubConnector, opts ...PipelineOption) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline([]retrieval.Connector{directory, semantic}, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline
}

func financeIdentity() *core.UserContext {
	return &core.UserContext{
		UserId:      "user@contoso.com",
		Role:        "Finance Manager",
		Department:  "Finance",
		CurrentDate: "2024-09-05",
		Permissions: core.UserPermissions{
			Groups:          []string{"Finance", "Managers"},
			AllowedBarriers: []string{"Finance", "Corporate"},
		},
	}
}

func TestNewPipeline(t *testing.T) {
	t.Run("no connectors", func(t *testing.T) {
		_, err := NewPipeline(nil)
		assert.Equal(t, ErrConnectorsRequired, err)
	})

	t.Run("nil connector", func(t *testing.T) {
		_, err := NewPipeline([]retrieval.Connector{nil})
		assert.ErrorIs(t, err, ErrConnectorsRequired)
	})

	t.Run("bad config is fatal at construction", func(t *testing.T) {
		cfg := NewConfig(WithMaxSources(0))
		_, err := NewPipeline([]retrieval.Connector{&stubConnector{source: core.SourceDirectory}}, WithConfig(cfg))
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("negative weight is fatal at construction", func(t *testing.T) {
		cfg := NewConfig(WithSourceWeight(core.SourceSemantic, -1))
		_, err := NewPipeline([]retrieval.Connector{&stubConnector{source: core.SourceDirectory}}, WithConfig(cfg))
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestProcess_EndToEnd(t *testing.T) {
	directory := &stubConnector{
		source: core.SourceDirectory,
		candidates: []*core.Candidate{
			{Id: "d-1", Title: "Review", Content: "Q3 revenue rose 4%", RelevanceScore: 0.7},
			{Id: "d-2", Content: "Hiring froze in Q3", RelevanceScore: 0.4},
		},
	}
	semantic := &stubConnector{
		source: core.SourceSemantic,
		candidates: []*core.Candidate{
			// Duplicate content of d-1, must collapse.
			{Id: "s-1", Content: "Q3 revenue rose 4%", RelevanceScore: 0.99},
			{Id: "s-2", Content: "Margins improved slightly", RelevanceScore: 0.9},
		},
	}

	pipeline := newTestPipeline(t, directory, semantic)
	monitor := &recordingMonitor{}

	result, err := pipeline.ProcessWithMonitor(context.Background(), "What happened in Q3?", financeIdentity(), monitor)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Metadata.RetrievedFromDirectory)
	assert.Equal(t, 2, result.Metadata.RetrievedFromSemantic)
	assert.Equal(t, 3, result.Metadata.AfterDedupAndRank)
	assert.Equal(t, 3, result.Metadata.AfterSecurityTrim)
	assert.Empty(t, result.Metadata.Warnings)

	// s-2 ranks 0.9*0.8=0.72, ahead of d-1 at 0.7*1.0.
	require.Len(t, result.Sources, 3)
	assert.Equal(t, "s-2", result.Sources[0].Id)
	assert.Equal(t, "d-1", result.Sources[1].Id)
	assert.Equal(t, "d-2", result.Sources[2].Id)

	assert.Contains(t, result.GroundedPrompt, "User Query: What happened in Q3?")
	assert.Equal(t, []string{"start", "expand", "retrieve", "retrieve", "merge", "trim", "finish"}, monitor.stages)
}

func TestProcess_SecurityTrimBeforeTopKCut(t *testing.T) {
	// Seven candidates, the top two restricted: the prompt must cite the
	// five best *surviving* candidates, not cut to five and then trim.
	directory := &stubConnector{source: core.SourceDirectory}
	var semanticDocs []*core.Candidate
	for i := 0; i < 7; i++ {
		semanticDocs = append(semanticDocs, &core.Candidate{
			Id:             string(rune('a' + i)),
			Content:        string(rune('a'+i)) + " body",
			RelevanceScore: 1.0 - float64(i)*0.1,
		})
	}
	semanticDocs[0].SensitivityLabel = core.SensitivityHighlyConfidential
	semanticDocs[1].SensitivityLabel = core.SensitivityHighlyConfidential
	semantic := &stubConnector{source: core.SourceSemantic, candidates: semanticDocs}

	pipeline := newTestPipeline(t, directory, semantic)
	result, err := pipeline.Process(context.Background(), "prompt", financeIdentity())
	require.NoError(t, err)

	require.Len(t, result.Sources, 5)
	assert.Equal(t, []string{"c", "d", "e", "f", "g"}, []string{
		result.Sources[0].Id, result.Sources[1].Id, result.Sources[2].Id,
		result.Sources[3].Id, result.Sources[4].Id,
	})
	assert.Equal(t, 7, result.Metadata.AfterDedupAndRank)
	assert.Equal(t, 5, result.Metadata.AfterSecurityTrim)
}

func TestProcess_SourcesNeverExceedMaxSources(t *testing.T) {
	var docs []*core.Candidate
	for i := 0; i < 40; i++ {
		docs = append(docs, &core.Candidate{
			Id:             string(rune('A' + i)),
			Content:        string(rune('A'+i)) + " content",
			RelevanceScore: 0.9,
		})
	}
	directory := &stubConnector{source: core.SourceDirectory, candidates: docs}
	semantic := &stubConnector{source: core.SourceSemantic}

	pipeline := newTestPipeline(t, directory, semantic)
	result, err := pipeline.Process(context.Background(), "prompt", financeIdentity())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Sources), 5)
}

func TestProcess_BranchFailureIsIsolated(t *testing.T) {
	directory := &stubConnector{
		source: core.SourceDirectory,
		candidates: []*core.Candidate{
			{Id: "d-1", Content: "still retrieved", RelevanceScore: 0.6},
		},
	}
	semantic := &stubConnector{source: core.SourceSemantic, err: errors.New("index offline")}

	pipeline := newTestPipeline(t, directory, semantic)
	monitor := &recordingMonitor{}

	result, err := pipeline.ProcessWithMonitor(context.Background(), "prompt", financeIdentity(), monitor)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Metadata.RetrievedFromDirectory)
	assert.Equal(t, 0, result.Metadata.RetrievedFromSemantic)
	require.Len(t, result.Metadata.Warnings, 1)
	assert.Contains(t, result.Metadata.Warnings[0], "index offline")
	assert.Equal(t, []core.SourceType{core.SourceSemantic}, monitor.failures)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "d-1", result.Sources[0].Id)
}

func TestProcess_EmptyRetrieval(t *testing.T) {
	directory := &stubConnector{source: core.SourceDirectory}
	semantic := &stubConnector{source: core.SourceSemantic}

	pipeline := newTestPipeline(t, directory, semantic)
	result, err := pipeline.Process(context.Background(), "Where is the roadmap?", financeIdentity())
	require.NoError(t, err)

	assert.Empty(t, result.Sources)
	assert.Empty(t, result.Metadata.Warnings)
	assert.Contains(t, result.GroundedPrompt, "Where is the roadmap?")
	assert.Contains(t, result.GroundedPrompt, "No relevant information was found")
}

func TestProcess_CancelledContext(t *testing.T) {
	directory := &stubConnector{source: core.SourceDirectory}
	semantic := &stubConnector{source: core.SourceSemantic}
	pipeline := newTestPipeline(t, directory, semantic)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Process(ctx, "prompt", financeIdentity())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_DenyUnclassifiedTrimmer(t *testing.T) {
	directory := &stubConnector{
		source: core.SourceDirectory,
		candidates: []*core.Candidate{
			{Id: "unclassified", Content: "no metadata", RelevanceScore: 0.9},
			{Id: "labeled", Content: "internal doc", SensitivityLabel: "Internal", RelevanceScore: 0.5},
		},
	}
	semantic := &stubConnector{source: core.SourceSemantic}

	pipeline := newTestPipeline(t, directory, semantic, WithTrimmer(NewTrimmer(WithDenyUnclassified())))
	result, err := pipeline.Process(context.Background(), "prompt", financeIdentity())
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, "labeled", result.Sources[0].Id)
}
