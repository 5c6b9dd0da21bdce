package domain

import (
	"fmt"
	"strconv"
	"strings"

	"stemma/internal/geom"
)

// Surface is the drawing sink handed to node content drawing.
// Coordinates are world space; the surface owner applies the view transform.
type Surface interface {
	FillRectangle(r geom.Rectangle, c Color)
	StrokeRectangle(r geom.Rectangle, width float64, c Color)
	StrokeLine(from, to geom.Point, width float64, c Color)
	FillText(t Text)
}

// Text is a single line of text placed at its top-left corner
type Text struct {
	Content  string     `json:"content"`
	Position geom.Point `json:"position"`
	Size     float64    `json:"size"`
	Color    Color      `json:"color"`
}

// Color is a straight-alpha RGBA color with channels in [0, 1]
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

var (
	White = Color{R: 1, G: 1, B: 1, A: 1}
	Black = Color{A: 1}
)

// RGB returns an opaque color
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// WithAlpha returns c with its alpha channel replaced
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Hex formats c as #rrggbbaa
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B), channel(c.A))
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
