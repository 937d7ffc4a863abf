package layout

import "mindmap/internal/domain"

// Result is the outcome of Compute: either *HierarchicalResult or
// *RadialResult. Callers that only need positions use Nodes.
type Result interface {
	// Nodes returns chapters, then main-topics, then sub-topics, each group
	// in input order.
	Nodes() []domain.Node
	// Dropped lists the ids of nodes whose type was not recognized. They
	// are absent from Nodes.
	Dropped() []string
	isResult()
}

// SubTopicGroup is a main-topic and the sub-topics placed beneath it.
type SubTopicGroup struct {
	ParentID string
	NodeIDs  []string
}

type HierarchicalResult struct {
	nodes   []domain.Node
	dropped []string

	Groups      []SubTopicGroup
	Unconnected []string
}

func (r *HierarchicalResult) Nodes() []domain.Node { return r.nodes }
func (r *HierarchicalResult) Dropped() []string    { return r.dropped }
func (*HierarchicalResult) isResult()              {}

// RadialResult is the fallback used when no main-topic to sub-topic edge
// exists: main-topics on a circle around Center, sub-topics in a staggered
// grid starting at Origin.
type RadialResult struct {
	nodes   []domain.Node
	dropped []string

	Center domain.Position
	Origin domain.Position
}

func (r *RadialResult) Nodes() []domain.Node { return r.nodes }
func (r *RadialResult) Dropped() []string    { return r.dropped }
func (*RadialResult) isResult()              {}
