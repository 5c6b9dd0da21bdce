// Package interaction turns raw pointer, wheel and key events into
// interaction state transitions and high-level messages.
//
// Handle is pure with respect to the graph: it reads the viewport, the
// selection and a hit tester, and proposes at most one domain.Message for the
// graph to apply.
package interaction

import (
	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/viewport"
)

// HitTester finds the node under a world point
type HitTester interface {
	FindNodeAt(p geom.Point) (domain.NodeID, bool)
}

// Input is the read-only model state an event is interpreted against
type Input struct {
	Viewport viewport.State
	Selected domain.NodeID
	Nodes    HitTester
	Params   viewport.Params
}

// Result is the outcome of one event
type Result struct {
	State State
	// Message is nil when the event proposes no model change
	Message domain.Message
	// Captured reports whether the event was consumed by the canvas
	Captured bool
}

// Handle interprets ev in state st.
//
// Button releases and key presses are always processed so a pan or drag can
// never be left active. Every other event is ignored while the cursor is
// outside the surface.
func Handle(ev Event, st State, in Input) Result {
	res := Result{State: st}

	switch ev.Kind {
	case ButtonReleased:
		if (ev.Button == ButtonLeft || ev.Button == ButtonRight) && st.Busy() {
			res.State = IdleState()
		}
		return res

	case KeyPressed:
		if ev.Key == KeyEscape && st.Busy() {
			res.State = IdleState()
			res.Captured = true
		}
		return res
	}

	if !viewport.InSurface(ev.Position, in.Viewport.Bounds) {
		return res
	}

	switch ev.Kind {
	case WheelScrolled:
		return wheel(ev, res, in)
	case ButtonPressed:
		return press(ev, res, in)
	case CursorMoved:
		return move(ev, res, in)
	}
	return res
}

func wheel(ev Event, res Result, in Input) Result {
	scale, translation, ok := in.Params.Zoom(in.Viewport, ev.Delta, ev.Position, in.Viewport.Bounds)
	if !ok {
		return res
	}
	res.Message = domain.Scaled{Scale: scale, Translation: &translation}
	res.Captured = true
	return res
}

func press(ev Event, res Result, in Input) Result {
	st := res.State

	switch ev.Button {
	case ButtonRight:
		if st.Kind == Idle || st.Kind == HoveringNode {
			res.State = PanningState(in.Viewport.Translation, ev.Position)
			res.Captured = true
		}

	case ButtonLeft:
		switch st.Kind {
		case HoveringNode:
			if st.Node == in.Selected {
				res.State = DraggingState(st.Node, ev.Position)
			} else {
				res.Message = domain.NodeClicked{ID: st.Node}
			}
			res.Captured = true
		case Idle:
			res.Message = domain.ClickedOutsideNode{}
			res.Captured = true
		}
	}
	return res
}

func move(ev Event, res Result, in Input) Result {
	st := res.State

	switch st.Kind {
	case Panning:
		res.Message = domain.Translated{
			Translation: viewport.Pan(st.Translation, st.Start, ev.Position, in.Viewport.Scale),
		}
		res.Captured = true

	case DraggingNode:
		moved := ev.Position.Sub(st.Start).Abs()
		if moved.X > in.Params.DragThreshold || moved.Y > in.Params.DragThreshold {
			world := viewport.ScreenToWorld(ev.Position, in.Viewport, in.Viewport.Bounds)
			res.Message = domain.NodeDragged{ID: st.Node, Anchor: in.Params.SnapToGrid(world)}
		}
		res.Captured = true

	default:
		world := viewport.ScreenToWorld(ev.Position, in.Viewport, in.Viewport.Bounds)
		if in.Nodes != nil {
			if id, ok := in.Nodes.FindNodeAt(world); ok {
				res.State = HoveringState(id)
				res.Captured = true
				return res
			}
		}
		res.State = IdleState()
	}
	return res
}
