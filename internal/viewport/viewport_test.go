package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemma/internal/geom"
)

const epsilon = 1e-6

var surface = geom.Rectangle{X: 300, Y: 0, Width: 800, Height: 600}

func assertPointNear(t *testing.T, want, got geom.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, epsilon, "x")
	assert.InDelta(t, want.Y, got.Y, epsilon, "y")
}

func TestWorldScreenRoundTrip(t *testing.T) {
	points := []geom.Point{
		geom.Pt(0, 0),
		geom.Pt(400, 300),
		geom.Pt(-1234.5, 987.25),
		geom.Pt(1e5, -1e5),
	}
	scales := []float64{MinScale, 0.37, 1, 1.5, MaxScale}
	translations := []geom.Vector{geom.Vec(0, 0), geom.Vec(-250, 40), geom.Vec(1e4, 3.3)}

	for _, p := range points {
		for _, s := range scales {
			for _, tr := range translations {
				st := State{Scale: s, Translation: tr}
				assertPointNear(t, p, ScreenToWorld(WorldToScreen(p, st, surface), st, surface))
				assertPointNear(t, p, WorldToScreen(ScreenToWorld(p, st, surface), st, surface))
			}
		}
	}
}

func TestWorldToScreen(t *testing.T) {
	st := State{Scale: 2, Translation: geom.Vec(10, -5)}

	// world origin lands at the surface center offset by the scaled translation
	got := WorldToScreen(geom.Origin, st, surface)
	assertPointNear(t, geom.Pt(400+20, 300-10), got)

	// the bounds origin does not matter, only its size
	moved := surface
	moved.X, moved.Y = -50, 75
	assertPointNear(t, got, WorldToScreen(geom.Origin, st, moved))
}

func TestVisibleRegion(t *testing.T) {
	t.Run("unscaled", func(t *testing.T) {
		st := New()
		assertPointNear(t, geom.Pt(-400, -300), VisibleRegion(st, surface.Size()))
		assertPointNear(t, geom.Origin, VisibleCenter(st, surface.Size()))
	})

	t.Run("matches the surface corner", func(t *testing.T) {
		st := State{Scale: 0.5, Translation: geom.Vec(120, -60)}
		corner := ScreenToWorld(geom.Origin, st, surface)
		assertPointNear(t, corner, VisibleRegion(st, surface.Size()))

		center := ScreenToWorld(geom.Pt(400, 300), st, surface)
		assertPointNear(t, center, VisibleCenter(st, surface.Size()))
	})
}

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		in   geom.Point
		want geom.Point
	}{
		{geom.Pt(0, 0), geom.Pt(0, 0)},
		{geom.Pt(15.9, 16.1), geom.Pt(0, 32)},
		{geom.Pt(-15.9, -16.1), geom.Pt(0, -32)},
		{geom.Pt(42, 200), geom.Pt(32, 192)},
		{geom.Pt(1000, -1000), geom.Pt(992, -992)},
	}

	for _, tt := range tests {
		got := SnapToGrid(tt.in)
		assert.Equal(t, tt.want, got, "SnapToGrid(%v)", tt.in)
		assert.Equal(t, got, SnapToGrid(got), "snap must be idempotent for %v", tt.in)
	}
}

func TestZoomClamping(t *testing.T) {
	pr := DefaultParams()
	center := geom.Pt(400, 300)

	t.Run("scroll up never exceeds the maximum", func(t *testing.T) {
		st := New()
		for i := 0; i < 200; i++ {
			scale, tr, ok := pr.Zoom(st, 5, center, surface)
			if !ok {
				break
			}
			st = pr.Apply(st, scale, &tr)
			require.LessOrEqual(t, st.Scale, MaxScale)
		}
		assert.Equal(t, MaxScale, st.Scale)

		_, _, ok := pr.Zoom(st, 1, center, surface)
		assert.False(t, ok, "scroll up at maximum is ignored")
		_, _, ok = pr.Zoom(st, -1, center, surface)
		assert.True(t, ok, "scroll down at maximum is allowed")
	})

	t.Run("scroll down never goes below the minimum", func(t *testing.T) {
		st := New()
		for i := 0; i < 200; i++ {
			scale, tr, ok := pr.Zoom(st, -5, center, surface)
			if !ok {
				break
			}
			st = pr.Apply(st, scale, &tr)
			require.GreaterOrEqual(t, st.Scale, MinScale)
		}
		assert.Equal(t, MinScale, st.Scale)

		_, _, ok := pr.Zoom(st, -1, center, surface)
		assert.False(t, ok)
	})

	t.Run("zero delta is ignored", func(t *testing.T) {
		_, _, ok := pr.Zoom(New(), 0, center, surface)
		assert.False(t, ok)
	})
}

func TestZoomAnchorsCursor(t *testing.T) {
	pr := DefaultParams()
	cursors := []geom.Point{geom.Pt(0, 0), geom.Pt(400, 300), geom.Pt(713, 12), geom.Pt(800, 600)}
	deltas := []float64{1, -1, 3.5, -7, 12}

	for _, c := range cursors {
		for _, d := range deltas {
			st := State{Scale: 0.8, Translation: geom.Vec(-37, 112)}
			before := ScreenToWorld(c, st, surface)

			scale, tr, ok := pr.Zoom(st, d, c, surface)
			require.True(t, ok)
			after := ScreenToWorld(c, pr.Apply(st, scale, &tr), surface)

			assertPointNear(t, before, after)
		}
	}
}

func TestZoomAtCenterKeepsTranslation(t *testing.T) {
	st := New()
	scale, tr, ok := DefaultParams().Zoom(st, 1, geom.Pt(400, 300), surface)

	require.True(t, ok)
	assert.InDelta(t, 1+1.0/30, scale, epsilon)
	assert.Equal(t, st.Translation, tr)
}

func TestPan(t *testing.T) {
	t0 := geom.Vec(5, 5)
	start := geom.Pt(100, 100)

	got := Pan(t0, start, geom.Pt(140, 80), 2)
	assert.Equal(t, geom.Vec(25, -5), got)

	// panning keeps the grabbed world point under the cursor
	st := State{Scale: 2, Translation: t0}
	grabbed := ScreenToWorld(start, st, surface)
	st.Translation = got
	assertPointNear(t, grabbed, ScreenToWorld(geom.Pt(140, 80), st, surface))
}

func TestClampScale(t *testing.T) {
	pr := DefaultParams()
	assert.Equal(t, MinScale, pr.ClampScale(0))
	assert.Equal(t, MaxScale, pr.ClampScale(math.Inf(1)))
	assert.Equal(t, 1.25, pr.ClampScale(1.25))
}
