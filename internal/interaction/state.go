package interaction

import (
	"fmt"

	"stemma/internal/domain"
	"stemma/internal/geom"
)

// Kind is the active variant of the interaction state
type Kind int

const (
	Idle Kind = iota
	Panning
	HoveringNode
	DraggingNode
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case HoveringNode:
		return "hovering_node"
	case DraggingNode:
		return "dragging_node"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{Idle, Panning, HoveringNode, DraggingNode} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown interaction state %q", text)
}

// State is the transient pointer interaction state. Only the fields of the
// active Kind are meaningful.
type State struct {
	Kind Kind `json:"kind"`
	// Node is the hovered or dragged node
	Node domain.NodeID `json:"node,omitempty"`
	// Translation is the viewport translation when a pan started
	Translation geom.Vector `json:"translation"`
	// Start is the screen point where a pan or drag started
	Start geom.Point `json:"start"`
}

// IdleState is the initial state
func IdleState() State {
	return State{Kind: Idle}
}

// PanningState starts a pan from translation at the screen point start
func PanningState(translation geom.Vector, start geom.Point) State {
	return State{Kind: Panning, Translation: translation, Start: start}
}

// HoveringState hovers id
func HoveringState(id domain.NodeID) State {
	return State{Kind: HoveringNode, Node: id}
}

// DraggingState drags id, pressed at the screen point start
func DraggingState(id domain.NodeID, start geom.Point) State {
	return State{Kind: DraggingNode, Node: id, Start: start}
}

// Hovered returns the hovered node, zero unless hovering
func (s State) Hovered() domain.NodeID {
	if s.Kind != HoveringNode {
		return domain.NilNodeID
	}
	return s.Node
}

// Busy reports whether a pan or drag is in progress
func (s State) Busy() bool {
	return s.Kind == Panning || s.Kind == DraggingNode
}

func (s State) String() string {
	switch s.Kind {
	case HoveringNode, DraggingNode:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Node)
	default:
		return s.Kind.String()
	}
}
