package graph

import (
	"fmt"

	"stemma/internal/domain"
)

// ChangeKind names what a message did to the model
type ChangeKind string

const (
	ChangeNone           ChangeKind = ""
	ChangeNodeInserted   ChangeKind = "node_inserted"
	ChangeNodeSelected   ChangeKind = "node_selected"
	ChangeNodeDeselected ChangeKind = "node_deselected"
	ChangeNodeMoved      ChangeKind = "node_dragged"
	ChangeViewport       ChangeKind = "viewport_changed"
)

// Change describes the effect of an applied message
type Change struct {
	Kind ChangeKind `json:"kind,omitempty"`
	// Node is the inserted, selected, deselected or moved node
	Node domain.NodeID `json:"node,omitempty"`
	// Parent is set for insertions with a parent
	Parent domain.NodeID `json:"parent,omitempty"`
}

// Mutated reports whether the model changed
func (c Change) Mutated() bool {
	return c.Kind != ChangeNone
}

// Apply performs one high-level message against the model
func (g *Graph[N]) Apply(msg domain.Message) (Change, error) {
	switch m := msg.(type) {
	case domain.InsertNode:
		n, err := g.Insert(m.Parent)
		if err != nil {
			return Change{}, err
		}
		return Change{Kind: ChangeNodeInserted, Node: n.ID(), Parent: m.Parent}, nil

	case domain.NodeClicked:
		if !g.Has(m.ID) {
			return Change{}, &NotFoundError{ID: m.ID}
		}
		if g.selected == m.ID {
			g.ClearSelected()
			return Change{Kind: ChangeNodeDeselected, Node: m.ID}, nil
		}
		g.selected = m.ID
		return Change{Kind: ChangeNodeSelected, Node: m.ID}, nil

	case domain.ClickedOutsideNode:
		if g.selected.IsZero() {
			return Change{}, nil
		}
		prev := g.selected
		g.ClearSelected()
		return Change{Kind: ChangeNodeDeselected, Node: prev}, nil

	case domain.NodeDragged:
		n, err := g.Lookup(m.ID)
		if err != nil {
			return Change{}, err
		}
		if n.Anchor() == m.Anchor {
			return Change{}, nil
		}
		n.SetAnchor(m.Anchor)
		return Change{Kind: ChangeNodeMoved, Node: m.ID}, nil

	case domain.Scaled:
		g.view = g.params.Apply(g.view, m.Scale, m.Translation)
		return Change{Kind: ChangeViewport}, nil

	case domain.Translated:
		g.view.Translation = m.Translation
		return Change{Kind: ChangeViewport}, nil

	case domain.ViewportBoundsChanged:
		if g.view.Bounds == m.Bounds {
			return Change{}, nil
		}
		g.view.Bounds = m.Bounds
		return Change{Kind: ChangeViewport}, nil

	case nil:
		return Change{}, nil

	default:
		return Change{}, fmt.Errorf("unsupported message %T", msg)
	}
}
