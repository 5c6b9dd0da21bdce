package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectangleContains(t *testing.T) {
	r := Rectangle{X: 10, Y: 20, Width: 100, Height: 50}

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"interior", Pt(50, 40), true},
		{"top-left corner", Pt(10, 20), true},
		{"bottom-right corner", Pt(110, 70), true},
		{"left edge", Pt(10, 45), true},
		{"just left", Pt(9.999, 45), false},
		{"just below", Pt(50, 70.001), false},
		{"far away", Pt(-500, 900), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.point))
		})
	}
}

func TestPointVectorArithmetic(t *testing.T) {
	p := Pt(3, 4)
	q := Pt(1, 1)

	assert.Equal(t, Vec(2, 3), p.Sub(q))
	assert.Equal(t, Pt(5, 7), p.Add(Vec(2, 3)))
	assert.Equal(t, q, p.Minus(p.Sub(q)))
	assert.Equal(t, Vec(4, 6), Vec(2, 3).Scale(2))
	assert.Equal(t, Vec(2, 3), Vec(-2, 3).Abs())
}

func TestRectangleCenterAndSize(t *testing.T) {
	r := Rect(Pt(10, 10), Size{Width: 20, Height: 40})

	assert.Equal(t, Pt(20, 30), r.Center())
	assert.Equal(t, Size{Width: 20, Height: 40}, r.Size())
	assert.Equal(t, Vec(10, 20), r.Size().Half())
	assert.True(t, r.Size().IsPositive())
	assert.False(t, Size{Width: 0, Height: 1}.IsPositive())
}
