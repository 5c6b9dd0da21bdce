package render

import (
	"encoding/hex"
	"encoding/json"

	"lukechampine.com/blake3"

	"stemma/internal/domain"
	"stemma/internal/geom"
)

// Op names a draw primitive
type Op string

const (
	OpTransform  Op = "transform"
	OpFillRect   Op = "fill_rect"
	OpStrokeRect Op = "stroke_rect"
	OpLine       Op = "line"
	OpText       Op = "text"
)

// Transform maps world space onto the surface: translate to the surface
// center, scale, then translate by the viewport translation.
type Transform struct {
	Center      geom.Vector `json:"center"`
	Scale       float64     `json:"scale"`
	Translation geom.Vector `json:"translation"`
}

// Apply maps a world point through the transform
func (t Transform) Apply(p geom.Point) geom.Point {
	return p.Add(t.Translation).Sub(geom.Origin).Scale(t.Scale).Add(t.Center).Point()
}

// Primitive is one draw call. Only the fields of Op are set.
type Primitive struct {
	Op        Op             `json:"op"`
	Transform *Transform     `json:"transform,omitempty"`
	Rect      geom.Rectangle `json:"rect,omitempty"`
	From      geom.Point     `json:"from,omitempty"`
	To        geom.Point     `json:"to,omitempty"`
	Width     float64        `json:"width,omitempty"`
	Color     domain.Color   `json:"color"`
	Text      *domain.Text   `json:"text,omitempty"`
}

// Frame is an ordered list of primitives in world space, preceded by the
// transform that places them on the surface. It implements domain.Surface.
type Frame struct {
	Size       geom.Size   `json:"size"`
	Primitives []Primitive `json:"primitives"`
}

// NewFrame creates an empty frame for a surface of the given size
func NewFrame(size geom.Size) *Frame {
	return &Frame{Size: size, Primitives: make([]Primitive, 0, 64)}
}

func (f *Frame) SetTransform(t Transform) {
	f.Primitives = append(f.Primitives, Primitive{Op: OpTransform, Transform: &t})
}

func (f *Frame) FillRectangle(r geom.Rectangle, c domain.Color) {
	f.Primitives = append(f.Primitives, Primitive{Op: OpFillRect, Rect: r, Color: c})
}

func (f *Frame) StrokeRectangle(r geom.Rectangle, width float64, c domain.Color) {
	f.Primitives = append(f.Primitives, Primitive{Op: OpStrokeRect, Rect: r, Width: width, Color: c})
}

func (f *Frame) StrokeLine(from, to geom.Point, width float64, c domain.Color) {
	f.Primitives = append(f.Primitives, Primitive{Op: OpLine, From: from, To: to, Width: width, Color: c})
}

func (f *Frame) FillText(t domain.Text) {
	f.Primitives = append(f.Primitives, Primitive{Op: OpText, Text: &t, Color: t.Color})
}

// Count returns how many primitives of op the frame holds
func (f *Frame) Count(op Op) int {
	n := 0
	for _, p := range f.Primitives {
		if p.Op == op {
			n++
		}
	}
	return n
}

// Digest returns a BLAKE3 hash of the frame's JSON form. Equal frames have
// equal digests, so it serves as an HTTP entity tag.
func (f *Frame) Digest() (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

var _ domain.Surface = (*Frame)(nil)
