package graph

import (
	"stemma/internal/domain"
	"stemma/internal/geom"
)

// FindNodeAt returns the first node, in insertion order, whose closed bounds
// contain the world point p.
func FindNodeAt[N domain.Node](p geom.Point, nodes []N) (domain.NodeID, bool) {
	for _, n := range nodes {
		if n.Contains(p) {
			return n.ID(), true
		}
	}
	return domain.NilNodeID, false
}

// FindNodeAt hit tests the graph's nodes
func (g *Graph[N]) FindNodeAt(p geom.Point) (domain.NodeID, bool) {
	return FindNodeAt(p, g.nodes)
}
