package grounding

import (
	"github.com/poiesic/grounder/core"
)

// PipelineMonitor provides hooks to observe a pipeline invocation.
// Implement this interface to track intermediate stages during grounding.
type PipelineMonitor interface {
	Start(prompt string)
	AfterExpand(query string)
	AfterRetrieve(source core.SourceType, count int)
	BranchFailed(source core.SourceType, err error)
	AfterMerge(candidates []*core.Candidate)
	AfterTrim(candidates []*core.Candidate)
	Finish(result *core.GroundedResult)
}

// noopMonitor is a no-op implementation of PipelineMonitor
type noopMonitor struct{}

var _ PipelineMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterExpand(_ string)                     {}
func (n *noopMonitor) AfterRetrieve(_ core.SourceType, _ int)   {}
func (n *noopMonitor) BranchFailed(_ core.SourceType, _ error)  {}
func (n *noopMonitor) AfterMerge(_ []*core.Candidate)           {}
func (n *noopMonitor) AfterTrim(_ []*core.Candidate)            {}
func (n *noopMonitor) Finish(_ *core.GroundedResult)            {}
