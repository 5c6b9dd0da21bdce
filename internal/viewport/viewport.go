// Package viewport converts between screen, scaled and world coordinates.
//
// Screen coordinates are pixels relative to the drawing surface's top-left
// corner. World coordinates are the pan/zoom independent plane where node
// anchors live. The mapping is
//
//	screen = (world + translation) * scale + surfaceCenter
//	world  = (screen - surfaceCenter) * (1/scale) - translation
//
// Everything here is a pure function of its arguments.
package viewport

import (
	"math"

	"stemma/internal/geom"
)

const (
	MinScale = 0.1
	MaxScale = 2.0
	GridSize = 32.0
	// ZoomStep is the wheel delta that doubles the scale
	ZoomStep = 30.0
	// DragThreshold is the distance in pixels a pressed pointer must travel
	// before a drag starts moving the node
	DragThreshold = 1.0
)

// State is the current zoom and pan of the canvas
type State struct {
	Scale       float64        `json:"scale" yaml:"scale"`
	Translation geom.Vector    `json:"translation" yaml:"translation"`
	Bounds      geom.Rectangle `json:"bounds" yaml:"bounds"`
}

// New returns an unscaled, untranslated viewport
func New() State {
	return State{Scale: 1}
}

// Params holds the tunable limits of the viewport
type Params struct {
	MinScale      float64
	MaxScale      float64
	GridSize      float64
	ZoomStep      float64
	DragThreshold float64
}

// DefaultParams returns the stock canvas limits
func DefaultParams() Params {
	return Params{
		MinScale:      MinScale,
		MaxScale:      MaxScale,
		GridSize:      GridSize,
		ZoomStep:      ZoomStep,
		DragThreshold: DragThreshold,
	}
}

// WorldToScreen maps a world point onto the surface
func WorldToScreen(world geom.Point, st State, bounds geom.Rectangle) geom.Point {
	center := bounds.Size().Half()
	return geom.Point{
		X: (world.X+st.Translation.X)*st.Scale + center.X,
		Y: (world.Y+st.Translation.Y)*st.Scale + center.Y,
	}
}

// ScreenToWorld maps a surface point back into the world
func ScreenToWorld(screen geom.Point, st State, bounds geom.Rectangle) geom.Point {
	center := bounds.Size().Half()
	inv := 1 / st.Scale
	return geom.Point{
		X: (screen.X-center.X)*inv - st.Translation.X,
		Y: (screen.Y-center.Y)*inv - st.Translation.Y,
	}
}

// VisibleRegion returns the world-space top-left corner of the area visible on
// a surface of the given size.
func VisibleRegion(st State, size geom.Size) geom.Point {
	return geom.Point{
		X: -st.Translation.X - size.Width/st.Scale/2,
		Y: -st.Translation.Y - size.Height/st.Scale/2,
	}
}

// VisibleCenter returns the world point shown at the center of the surface
func VisibleCenter(st State, size geom.Size) geom.Point {
	return VisibleRegion(st, size).Add(size.Scale(1 / st.Scale).Half())
}

// InSurface reports whether a surface-relative point lies on the surface
func InSurface(p geom.Point, bounds geom.Rectangle) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= bounds.Width && p.Y <= bounds.Height
}

// SnapToGrid rounds both coordinates to the nearest multiple of GridSize
func SnapToGrid(p geom.Point) geom.Point {
	return DefaultParams().SnapToGrid(p)
}

// SnapToGrid rounds both coordinates to the nearest grid multiple
func (pr Params) SnapToGrid(p geom.Point) geom.Point {
	return geom.Point{
		X: math.Round(p.X/pr.GridSize) * pr.GridSize,
		Y: math.Round(p.Y/pr.GridSize) * pr.GridSize,
	}
}

// ClampScale limits a scale to [MinScale, MaxScale]
func (pr Params) ClampScale(scale float64) float64 {
	return math.Min(math.Max(scale, pr.MinScale), pr.MaxScale)
}

// Zoom proposes the scale and translation after a wheel scroll of deltaY with
// the cursor at a surface-relative position. Positive deltas zoom in. ok is
// false when the scroll would only push the scale further past a limit.
//
// The returned translation keeps the world point under the cursor fixed on
// screen.
func (pr Params) Zoom(st State, deltaY float64, cursor geom.Point, bounds geom.Rectangle) (scale float64, translation geom.Vector, ok bool) {
	if !(deltaY < 0 && st.Scale > pr.MinScale || deltaY > 0 && st.Scale < pr.MaxScale) {
		return st.Scale, st.Translation, false
	}

	old := st.Scale
	scale = pr.ClampScale(old * (1 + deltaY/pr.ZoomStep))

	fromCenter := cursor.Sub(bounds.Size().Half().Point())
	factor := (scale - old) / (old * scale)
	translation = st.Translation.Sub(fromCenter.Scale(factor))

	return scale, translation, true
}

// Pan returns the translation for a pan that started at start with
// translation t0 and whose cursor is now at current. The start anchor is
// never moved so repeated moves do not accumulate drift.
func Pan(t0 geom.Vector, start, current geom.Point, scale float64) geom.Vector {
	return t0.Add(current.Sub(start).Scale(1 / scale))
}

// Apply returns st with a new scale and, when given, a new translation.
// The scale is clamped, never rejected.
func (pr Params) Apply(st State, scale float64, translation *geom.Vector) State {
	st.Scale = pr.ClampScale(scale)
	if translation != nil {
		st.Translation = *translation
	}
	return st
}
