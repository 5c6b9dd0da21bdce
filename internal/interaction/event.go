package interaction

import (
	"fmt"

	"stemma/internal/geom"
)

// EventKind names a raw input event
type EventKind string

const (
	CursorMoved    EventKind = "cursor_moved"
	ButtonPressed  EventKind = "button_pressed"
	ButtonReleased EventKind = "button_released"
	WheelScrolled  EventKind = "wheel_scrolled"
	KeyPressed     EventKind = "key_pressed"
)

// Button is a pointer button
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// KeyEscape is the key name that cancels a pan or drag
const KeyEscape = "Escape"

// Event is one raw pointer, wheel or keyboard event. Position is the cursor
// in surface-relative screen coordinates, present on every pointer event.
type Event struct {
	Kind     EventKind  `json:"kind" validate:"required,oneof=cursor_moved button_pressed button_released wheel_scrolled key_pressed"`
	Position geom.Point `json:"position"`
	Button   Button     `json:"button,omitempty" validate:"omitempty,oneof=left right middle"`
	// Delta is the vertical wheel delta; positive scrolls up and zooms in
	Delta float64 `json:"delta,omitempty"`
	Key   string  `json:"key,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case ButtonPressed, ButtonReleased:
		return fmt.Sprintf("%s(%s @ %.1f,%.1f)", e.Kind, e.Button, e.Position.X, e.Position.Y)
	case WheelScrolled:
		return fmt.Sprintf("%s(%.2f @ %.1f,%.1f)", e.Kind, e.Delta, e.Position.X, e.Position.Y)
	case KeyPressed:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Key)
	default:
		return fmt.Sprintf("%s(%.1f,%.1f)", e.Kind, e.Position.X, e.Position.Y)
	}
}

// Move is a cursor move to (x, y)
func Move(x, y float64) Event {
	return Event{Kind: CursorMoved, Position: geom.Pt(x, y)}
}

// Press is a button press at (x, y)
func Press(b Button, x, y float64) Event {
	return Event{Kind: ButtonPressed, Button: b, Position: geom.Pt(x, y)}
}

// Release is a button release at (x, y)
func Release(b Button, x, y float64) Event {
	return Event{Kind: ButtonReleased, Button: b, Position: geom.Pt(x, y)}
}

// Wheel is a vertical scroll of delta at (x, y)
func Wheel(delta, x, y float64) Event {
	return Event{Kind: WheelScrolled, Delta: delta, Position: geom.Pt(x, y)}
}

// Key is a key press
func Key(name string) Event {
	return Event{Kind: KeyPressed, Key: name}
}
