package domain

import "fmt"

// Edge is a directed parent to child link between two nodes
type Edge struct {
	Start NodeID `json:"start" yaml:"start"`
	End   NodeID `json:"end" yaml:"end"`
}

// NewEdge creates an edge from parent to child
func NewEdge(start, end NodeID) Edge {
	return Edge{Start: start, End: end}
}

// Touches reports whether id is one of the edge endpoints
func (e Edge) Touches(id NodeID) bool {
	return e.Start == id || e.End == id
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s", e.Start, e.End)
}

// DanglingEdgeError reports an edge whose endpoint is not in the graph
type DanglingEdgeError struct {
	Edge    Edge
	Missing NodeID
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s references missing node %s", e.Edge, e.Missing)
}
