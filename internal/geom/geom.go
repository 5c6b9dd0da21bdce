// Package geom provides the 2D value types shared by the canvas engine.
//
// Points are positions, vectors are offsets between positions. Keeping the two
// apart makes it hard to add a screen position to a world position by mistake.
package geom

import "math"

// Point is a position in some coordinate space
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vector is an offset between two points
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is a width/height pair
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rectangle is an axis-aligned rectangle anchored at its top-left corner
type Rectangle struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Origin is the zero point
var Origin = Point{}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec is shorthand for Vector{X: x, Y: y}
func Vec(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// Add offsets the point by v
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector from q to p
func (p Point) Sub(q Point) Vector {
	return Vector{X: p.X - q.X, Y: p.Y - q.Y}
}

// Minus offsets the point by -v
func (p Point) Minus(v Vector) Point {
	return Point{X: p.X - v.X, Y: p.Y - v.Y}
}

// Add returns v + w
func (v Vector) Add(w Vector) Vector {
	return Vector{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v - w
func (v Vector) Sub(w Vector) Vector {
	return Vector{X: v.X - w.X, Y: v.Y - w.Y}
}

// Scale multiplies both components by f
func (v Vector) Scale(f float64) Vector {
	return Vector{X: v.X * f, Y: v.Y * f}
}

// Abs returns the component-wise absolute value
func (v Vector) Abs() Vector {
	return Vector{X: math.Abs(v.X), Y: math.Abs(v.Y)}
}

// Point returns the position reached by offsetting the origin by v
func (v Vector) Point() Point {
	return Point{X: v.X, Y: v.Y}
}

// Half returns a vector pointing at the center of a box of this size
func (s Size) Half() Vector {
	return Vector{X: s.Width / 2, Y: s.Height / 2}
}

// Scale multiplies both dimensions by f
func (s Size) Scale(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// IsPositive reports whether both dimensions are strictly greater than zero
func (s Size) IsPositive() bool {
	return s.Width > 0 && s.Height > 0
}

// Rect builds a rectangle from an anchor and a size
func Rect(anchor Point, size Size) Rectangle {
	return Rectangle{X: anchor.X, Y: anchor.Y, Width: size.Width, Height: size.Height}
}

// Anchor returns the top-left corner
func (r Rectangle) Anchor() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle dimensions
func (r Rectangle) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Center returns the center point in the rectangle's own coordinate space
func (r Rectangle) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside the rectangle. All four edges are
// inclusive, so points on the boundary count as inside.
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.X &&
		p.X <= r.X+r.Width &&
		p.Y >= r.Y &&
		p.Y <= r.Y+r.Height
}
