// Package render turns the canvas model into a deterministic frame of draw
// primitives.
//
// Draw order is fixed: the world transform, then every node (base fill
// followed by the node's own content) in insertion order, then every edge as
// a three-segment elbow connector.
package render

import (
	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/viewport"
)

// Style holds the colors and widths the renderer draws with
type Style struct {
	NodeFill   domain.Color
	HoverAlpha float64
	EdgeStroke domain.Color
	EdgeWidth  float64
}

// DefaultStyle returns the stock palette: white nodes, white 2px connectors
func DefaultStyle() Style {
	return Style{
		NodeFill:   domain.White,
		HoverAlpha: 0.5,
		EdgeStroke: domain.White,
		EdgeWidth:  2,
	}
}

// Scene is everything a frame is rendered from
type Scene[N domain.Node] struct {
	Viewport viewport.State
	// Hovered is the node under the cursor, zero when none
	Hovered domain.NodeID
	Nodes   []N
	Edges   []domain.Edge
	Style   Style
}

// Render draws the scene into a new frame. An edge whose endpoint is not
// among the scene's nodes yields a *domain.DanglingEdgeError and no frame.
func Render[N domain.Node](sc Scene[N]) (*Frame, error) {
	byID := make(map[domain.NodeID]N, len(sc.Nodes))
	for _, n := range sc.Nodes {
		byID[n.ID()] = n
	}

	size := sc.Viewport.Bounds.Size()
	f := NewFrame(size)
	f.SetTransform(Transform{
		Center:      size.Half(),
		Scale:       sc.Viewport.Scale,
		Translation: sc.Viewport.Translation,
	})

	for _, n := range sc.Nodes {
		hovered := n.ID() == sc.Hovered
		fill := sc.Style.NodeFill
		if hovered {
			fill = fill.WithAlpha(sc.Style.HoverAlpha)
		}
		f.FillRectangle(domain.Bounds(n), fill)
		n.DrawContent(f, hovered)
	}

	for _, e := range sc.Edges {
		start, ok := byID[e.Start]
		if !ok {
			return nil, &domain.DanglingEdgeError{Edge: e, Missing: e.Start}
		}
		end, ok := byID[e.End]
		if !ok {
			return nil, &domain.DanglingEdgeError{Edge: e, Missing: e.End}
		}

		pts := Elbow(start, end)
		for i := 0; i < len(pts)-1; i++ {
			f.StrokeLine(pts[i], pts[i+1], sc.Style.EdgeWidth, sc.Style.EdgeStroke)
		}
	}

	return f, nil
}

// Elbow returns the four points of the vertical-horizontal-vertical connector
// between two nodes. It always runs downward: from the bottom center of the
// node with the smaller anchor y to the top center of the other, turning at
// the vertical midpoint. Ties keep a as the upper node.
func Elbow(a, b domain.Node) [4]geom.Point {
	upper, lower := a, b
	if a.Anchor().Y > b.Anchor().Y {
		upper, lower = b, a
	}

	ua, us := upper.Anchor(), upper.Size()
	la, ls := lower.Anchor(), lower.Size()

	start := geom.Pt(ua.X+us.Width/2, ua.Y+us.Height)
	end := geom.Pt(la.X+ls.Width/2, la.Y)
	midY := start.Y + (end.Y-start.Y)/2

	return [4]geom.Point{
		start,
		geom.Pt(start.X, midY),
		geom.Pt(end.X, midY),
		end,
	}
}
