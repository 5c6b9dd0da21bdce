package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/viewport"
)

func scene(nodes []*domain.Person, edges []domain.Edge) Scene[*domain.Person] {
	return Scene[*domain.Person]{
		Viewport: viewport.State{Scale: 1.5, Translation: geom.Vec(10, -20), Bounds: geom.Rectangle{Width: 800, Height: 600}},
		Nodes:    nodes,
		Edges:    edges,
		Style:    DefaultStyle(),
	}
}

func TestRenderOrder(t *testing.T) {
	a := domain.RestorePerson(domain.NewNodeID(), geom.Origin, domain.SexMale, "Ada", "")
	b := domain.NewPerson(geom.Pt(0, 192))

	f, err := Render(scene([]*domain.Person{a, b}, []domain.Edge{domain.NewEdge(a.ID(), b.ID())}))
	require.NoError(t, err)

	ops := make([]Op, len(f.Primitives))
	for i, p := range f.Primitives {
		ops[i] = p.Op
	}
	assert.Equal(t, []Op{
		OpTransform,
		OpFillRect, OpStrokeRect, OpText, // a
		OpFillRect, OpStrokeRect, // b
		OpLine, OpLine, OpLine,
	}, ops)

	tr := f.Primitives[0].Transform
	require.NotNil(t, tr)
	assert.Equal(t, geom.Vec(400, 300), tr.Center)
	assert.Equal(t, 1.5, tr.Scale)
	assert.Equal(t, geom.Vec(10, -20), tr.Translation)
}

func TestRenderHover(t *testing.T) {
	a := domain.NewPerson(geom.Origin)
	b := domain.NewPerson(geom.Pt(256, 0))

	sc := scene([]*domain.Person{a, b}, nil)
	sc.Hovered = b.ID()
	f, err := Render(sc)
	require.NoError(t, err)

	var fills []domain.Color
	for _, p := range f.Primitives {
		if p.Op == OpFillRect {
			fills = append(fills, p.Color)
		}
	}
	require.Len(t, fills, 2)
	assert.Equal(t, 1.0, fills[0].A)
	assert.Equal(t, 0.5, fills[1].A)
}

func TestRenderDanglingEdge(t *testing.T) {
	a := domain.NewPerson(geom.Origin)
	ghost := domain.NewNodeID()

	_, err := Render(scene([]*domain.Person{a}, []domain.Edge{domain.NewEdge(a.ID(), ghost)}))

	var dangling *domain.DanglingEdgeError
	require.True(t, errors.As(err, &dangling))
	assert.Equal(t, ghost, dangling.Missing)
}

func TestElbow(t *testing.T) {
	parent := domain.NewPerson(geom.Pt(0, 0))
	child := domain.NewPerson(geom.Pt(256, 192))

	want := [4]geom.Point{
		geom.Pt(64, 96),
		geom.Pt(64, 144),
		geom.Pt(320, 144),
		geom.Pt(320, 192),
	}

	t.Run("runs downward", func(t *testing.T) {
		assert.Equal(t, want, Elbow(parent, child))
	})

	t.Run("upper node chosen by anchor y", func(t *testing.T) {
		assert.Equal(t, want, Elbow(child, parent))
	})

	t.Run("straight when aligned", func(t *testing.T) {
		below := domain.NewPerson(geom.Pt(0, 192))
		pts := Elbow(parent, below)
		for _, p := range pts {
			assert.Equal(t, 64.0, p.X)
		}
	})
}

func TestTransformApply(t *testing.T) {
	st := viewport.State{Scale: 0.5, Translation: geom.Vec(100, 50), Bounds: geom.Rectangle{X: 300, Width: 800, Height: 600}}
	tr := Transform{Center: st.Bounds.Size().Half(), Scale: st.Scale, Translation: st.Translation}

	p := geom.Pt(-30, 70)
	assert.Equal(t, viewport.WorldToScreen(p, st, st.Bounds), tr.Apply(p))
}

func TestCache(t *testing.T) {
	a := domain.NewPerson(geom.Origin)
	sc := scene([]*domain.Person{a}, nil)

	var c Cache
	builds := 0
	build := func() (*Frame, error) {
		builds++
		return Render(sc)
	}

	f1, d1, hit, err := c.Draw(build)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotEmpty(t, d1)

	f2, d2, hit, err := c.Draw(build)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, f1, f2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, 1, builds)

	a.SetAnchor(geom.Pt(32, 0))
	c.Invalidate()
	assert.False(t, c.Valid())

	_, d3, hit, err := c.Draw(build)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotEqual(t, d1, d3, "moved node changes the digest")

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)

	t.Run("failed build is not memoized", func(t *testing.T) {
		var c Cache
		_, _, _, err := c.Draw(func() (*Frame, error) { return nil, errors.New("boom") })
		assert.Error(t, err)
		assert.False(t, c.Valid())
	})
}

func TestDigestDeterministic(t *testing.T) {
	a := domain.NewPerson(geom.Origin)
	f1, err := Render(scene([]*domain.Person{a}, nil))
	require.NoError(t, err)
	f2, err := Render(scene([]*domain.Person{a}, nil))
	require.NoError(t, err)

	d1, err := f1.Digest()
	require.NoError(t, err)
	d2, err := f2.Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
}
