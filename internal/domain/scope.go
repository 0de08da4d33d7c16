package domain

import "sort"

// NodeStage classifies a node's retune progress.
type NodeStage string

const (
	StagePre     NodeStage = "Pre"
	StagePost    NodeStage = "Post"
	StageMixed   NodeStage = "Mixed"
	StageUnknown NodeStage = "Unknown"
)

// NodeScope maps node identifiers to their retune stage. It is built once
// per snapshot before the dependent checks run and is read-only afterwards.
type NodeScope struct {
	stages map[string]NodeStage
}

// NewNodeScope builds a scope from a stage mapping. The map is copied.
func NewNodeScope(stages map[string]NodeStage) NodeScope {
	out := make(map[string]NodeStage, len(stages))
	for node, stage := range stages {
		out[node] = stage
	}
	return NodeScope{stages: out}
}

// Stage returns the node's stage, StageUnknown for nodes the scope never saw.
func (s NodeScope) Stage(node string) NodeStage {
	if stage, ok := s.stages[node]; ok {
		return stage
	}
	return StageUnknown
}

// Nodes returns the sorted node names classified at the given stage.
func (s NodeScope) Nodes(stage NodeStage) []string {
	var out []string
	for node, st := range s.stages {
		if st == stage {
			out = append(out, node)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of classified nodes.
func (s NodeScope) Len() int {
	return len(s.stages)
}

// RetunedSet returns the nodes classified Post as a membership set, the form
// the relation diff engine consumes as its retuned-node filter.
func (s NodeScope) RetunedSet() map[string]struct{} {
	out := map[string]struct{}{}
	for node, stage := range s.stages {
		if stage == StagePost {
			out[node] = struct{}{}
		}
	}
	return out
}
