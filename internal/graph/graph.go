// Package graph owns the node and edge set of a canvas together with its
// selection and viewport, and applies high-level messages to them.
//
// The model is generic over the domain.Node capability so new node types can
// be added without touching the engine. It is not safe for concurrent use;
// callers serialize access (see service.CanvasService).
package graph

import (
	"fmt"

	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/viewport"
)

// Factory builds a new node anchored at the given world point
type Factory[N domain.Node] func(anchor geom.Point) N

// Graph is the node/edge model of one canvas
type Graph[N domain.Node] struct {
	nodes    []N
	index    map[domain.NodeID]int
	edges    []domain.Edge
	selected domain.NodeID
	view     viewport.State
	params   viewport.Params
	factory  Factory[N]
	ticks    uint64
}

// New creates an empty graph at unit scale
func New[N domain.Node](factory Factory[N], params viewport.Params) *Graph[N] {
	return &Graph[N]{
		nodes:   make([]N, 0),
		index:   make(map[domain.NodeID]int),
		edges:   make([]domain.Edge, 0),
		view:    viewport.New(),
		params:  params,
		factory: factory,
	}
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (g *Graph[N]) Nodes() []N {
	return g.nodes
}

// Edges returns the edges in insertion order. The slice must not be modified.
func (g *Graph[N]) Edges() []domain.Edge {
	return g.edges
}

// Len returns the number of nodes
func (g *Graph[N]) Len() int {
	return len(g.nodes)
}

// Selected returns the selected node id, zero when nothing is selected
func (g *Graph[N]) Selected() domain.NodeID {
	return g.selected
}

// Viewport returns the current scale, translation and surface bounds
func (g *Graph[N]) Viewport() viewport.State {
	return g.view
}

// Params returns the viewport limits the graph clamps against
func (g *Graph[N]) Params() viewport.Params {
	return g.params
}

// Ticks returns the number of periodic ticks seen
func (g *Graph[N]) Ticks() uint64 {
	return g.ticks
}

// Tick advances the periodic tick counter
func (g *Graph[N]) Tick() uint64 {
	g.ticks++
	return g.ticks
}

// Lookup returns the node with the given id
func (g *Graph[N]) Lookup(id domain.NodeID) (N, error) {
	i, ok := g.index[id]
	if !ok {
		var zero N
		return zero, &NotFoundError{ID: id}
	}
	return g.nodes[i], nil
}

// MustLookup is like Lookup but panics if the node does not exist. It is for
// call sites where a missing id is a programming error.
func (g *Graph[N]) MustLookup(id domain.NodeID) N {
	n, err := g.Lookup(id)
	if err != nil {
		panic(err)
	}
	return n
}

// Has reports whether id is a node of the graph
func (g *Graph[N]) Has(id domain.NodeID) bool {
	_, ok := g.index[id]
	return ok
}

// InsertNode appends node and, when parent is non-zero, an edge from parent
// to node. Nothing is modified if an error is returned.
func (g *Graph[N]) InsertNode(node N, parent domain.NodeID) error {
	id := node.ID()
	if id.IsZero() {
		return fmt.Errorf("insert node: missing id")
	}
	if g.Has(id) {
		return fmt.Errorf("insert node %s: %w", id, ErrDuplicateNode)
	}
	if !node.Size().IsPositive() {
		return fmt.Errorf("insert node %s: %w", id, ErrInvalidSize)
	}
	if !parent.IsZero() && !g.Has(parent) {
		return fmt.Errorf("insert node %s: parent: %w", id, &NotFoundError{ID: parent})
	}

	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	if !parent.IsZero() {
		g.edges = append(g.edges, domain.NewEdge(parent, id))
	}
	return nil
}

// Insert builds a node with the graph's factory and inserts it. Without a
// parent the node is anchored at the center of the visible region; with one it
// is placed directly below the parent, two parent heights down.
func (g *Graph[N]) Insert(parent domain.NodeID) (N, error) {
	anchor, err := g.placement(parent)
	if err != nil {
		var zero N
		return zero, err
	}

	node := g.factory(anchor)
	if err := g.InsertNode(node, parent); err != nil {
		var zero N
		return zero, err
	}
	return node, nil
}

func (g *Graph[N]) placement(parent domain.NodeID) (geom.Point, error) {
	if parent.IsZero() {
		return viewport.VisibleCenter(g.view, g.view.Bounds.Size()), nil
	}

	p, err := g.Lookup(parent)
	if err != nil {
		return geom.Point{}, fmt.Errorf("insert node: parent: %w", err)
	}
	return p.Anchor().Add(geom.Vector{Y: 2 * p.Size().Height}), nil
}

// SetSelected selects id
func (g *Graph[N]) SetSelected(id domain.NodeID) error {
	if !g.Has(id) {
		return &NotFoundError{ID: id}
	}
	g.selected = id
	return nil
}

// ClearSelected drops the selection
func (g *Graph[N]) ClearSelected() {
	g.selected = domain.NilNodeID
}

// MoveNode sets the anchor of id. No collision detection or clamping occurs.
func (g *Graph[N]) MoveNode(id domain.NodeID, anchor geom.Point) error {
	n, err := g.Lookup(id)
	if err != nil {
		return err
	}
	n.SetAnchor(anchor)
	return nil
}

// SetViewport replaces the viewport, clamping its scale
func (g *Graph[N]) SetViewport(st viewport.State) {
	g.view = g.params.Apply(st, st.Scale, &st.Translation)
}

// Restore replaces the whole model. The input is validated first so a bad
// layout leaves the graph untouched.
func (g *Graph[N]) Restore(nodes []N, edges []domain.Edge, selected domain.NodeID) error {
	index := make(map[domain.NodeID]int, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.ID()]; dup {
			return fmt.Errorf("restore: node %s: %w", n.ID(), ErrDuplicateNode)
		}
		if !n.Size().IsPositive() {
			return fmt.Errorf("restore: node %s: %w", n.ID(), ErrInvalidSize)
		}
		index[n.ID()] = i
	}
	for _, e := range edges {
		for _, end := range []domain.NodeID{e.Start, e.End} {
			if _, ok := index[end]; !ok {
				return fmt.Errorf("restore: %w", &domain.DanglingEdgeError{Edge: e, Missing: end})
			}
		}
	}
	if !selected.IsZero() {
		if _, ok := index[selected]; !ok {
			return fmt.Errorf("restore: selection: %w", &NotFoundError{ID: selected})
		}
	}

	g.nodes = append(make([]N, 0, len(nodes)), nodes...)
	g.edges = append(make([]domain.Edge, 0, len(edges)), edges...)
	g.index = index
	g.selected = selected
	return nil
}
