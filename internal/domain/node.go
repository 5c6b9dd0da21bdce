package domain

import "stemma/internal/geom"

// Node is the capability contract the canvas engine requires of a node type.
// Implementations are expected to be pointer types so SetAnchor mutates the
// node held by the graph.
type Node interface {
	// ID returns the identity assigned at creation
	ID() NodeID
	// Anchor returns the top-left corner in world space
	Anchor() geom.Point
	SetAnchor(anchor geom.Point)
	// Size returns the width and height in world units, both positive
	Size() geom.Size
	// Contains reports whether a world point lies inside the node
	Contains(p geom.Point) bool
	// DrawContent draws the type-specific content on top of the base fill
	DrawContent(s Surface, hovered bool)
}

// Bounds returns the world-space rectangle covered by n
func Bounds(n Node) geom.Rectangle {
	return geom.Rect(n.Anchor(), n.Size())
}

// Contains is the default containment test: the closed rectangle spanned by
// the anchor and size. Node types can delegate to it.
func Contains(n Node, p geom.Point) bool {
	return Bounds(n).Contains(p)
}
