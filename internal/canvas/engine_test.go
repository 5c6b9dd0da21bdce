package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/graph"
	"stemma/internal/interaction"
	"stemma/internal/render"
	"stemma/internal/viewport"
)

var surface = geom.Rectangle{X: 300, Y: 0, Width: 800, Height: 600}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(viewport.DefaultParams(), render.DefaultStyle())
	_, err := e.Resize(surface)
	require.NoError(t, err)
	return e
}

func feed(t *testing.T, e *Engine, events ...interaction.Event) Outcome {
	t.Helper()
	var out Outcome
	for _, ev := range events {
		var err error
		out, err = e.HandleEvent(ev)
		require.NoError(t, err, ev.String())
	}
	return out
}

func TestInsertClickInsertDrag(t *testing.T) {
	e := newEngine(t)
	g := e.Graph()

	change, err := e.Apply(domain.InsertNode{})
	require.NoError(t, err)
	require.Equal(t, graph.ChangeNodeInserted, change.Kind)

	a := g.MustLookup(change.Node)
	assert.Equal(t, geom.Origin, a.Anchor())
	assert.True(t, g.Selected().IsZero())
	assert.Len(t, g.Nodes(), 1)
	assert.Empty(t, g.Edges())

	// click A: the surface center is the world origin
	feed(t, e,
		interaction.Move(410, 310),
		interaction.Press(interaction.ButtonLeft, 410, 310),
		interaction.Release(interaction.ButtonLeft, 410, 310),
	)
	assert.Equal(t, a.ID(), g.Selected())

	change, err = e.Apply(domain.InsertNode{Parent: a.ID()})
	require.NoError(t, err)
	b := g.MustLookup(change.Node)
	assert.Equal(t, []*domain.Person{a, b}, g.Nodes())
	assert.Equal(t, []domain.Edge{domain.NewEdge(a.ID(), b.ID())}, g.Edges())
	assert.Equal(t, a.Anchor().Add(geom.Vec(0, 2*a.Size().Height)), b.Anchor())

	// select B, then press it again to start dragging and move one cell right
	bx, by := 410.0, 300+192+10.0
	feed(t, e,
		interaction.Move(bx, by),
		interaction.Press(interaction.ButtonLeft, bx, by),
		interaction.Release(interaction.ButtonLeft, bx, by),
		interaction.Move(bx, by),
	)
	require.Equal(t, b.ID(), g.Selected())

	before := b.Anchor()
	out := feed(t, e,
		interaction.Press(interaction.ButtonLeft, bx, by),
		interaction.Move(bx+32, by),
	)
	assert.Equal(t, interaction.DraggingNode, out.State.Kind)
	assert.Equal(t, graph.ChangeNodeMoved, out.Change.Kind)
	assert.Equal(t, before.X+32, b.Anchor().X)
	assert.Equal(t, before.Y, b.Anchor().Y)

	out = feed(t, e, interaction.Release(interaction.ButtonLeft, bx+32, by))
	assert.Equal(t, interaction.Idle, out.State.Kind)
}

func TestCenterZoomKeepsTranslation(t *testing.T) {
	e := newEngine(t)

	out := feed(t, e, interaction.Wheel(1, 400, 300))
	assert.Equal(t, graph.ChangeViewport, out.Change.Kind)

	vp := e.Graph().Viewport()
	assert.Greater(t, vp.Scale, 1.0)
	assert.Equal(t, geom.Vector{}, vp.Translation)
}

func TestZoomClamps(t *testing.T) {
	e := newEngine(t)

	for i := 0; i < 200; i++ {
		feed(t, e, interaction.Wheel(5, 123, 456))
	}
	assert.LessOrEqual(t, e.Graph().Viewport().Scale, viewport.MaxScale)

	for i := 0; i < 200; i++ {
		feed(t, e, interaction.Wheel(-5, 123, 456))
	}
	assert.GreaterOrEqual(t, e.Graph().Viewport().Scale, viewport.MinScale)
}

func TestFrameCache(t *testing.T) {
	e := newEngine(t)
	_, err := e.Apply(domain.InsertNode{})
	require.NoError(t, err)

	_, d1, hit, err := e.Frame()
	require.NoError(t, err)
	assert.False(t, hit)

	_, _, hit, err = e.Frame()
	require.NoError(t, err)
	assert.True(t, hit)

	t.Run("hover invalidates", func(t *testing.T) {
		feed(t, e, interaction.Move(410, 310))
		_, d2, hit, err := e.Frame()
		require.NoError(t, err)
		assert.False(t, hit)
		assert.NotEqual(t, d1, d2)
	})

	t.Run("event without effect keeps frame", func(t *testing.T) {
		_, _, _, err := e.Frame()
		require.NoError(t, err)
		feed(t, e, interaction.Move(411, 311))
		_, _, hit, err := e.Frame()
		require.NoError(t, err)
		assert.True(t, hit)
	})

	t.Run("person edit invalidates", func(t *testing.T) {
		id := e.Graph().Nodes()[0].ID()
		name := "Ada"
		p, err := e.UpdatePerson(id, PersonPatch{FirstName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Ada", p.FirstName())

		_, _, hit, err := e.Frame()
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("style change invalidates", func(t *testing.T) {
		style := render.DefaultStyle()
		style.EdgeWidth = 4
		e.SetStyle(style)
		_, _, hit, err := e.Frame()
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestUpdatePersonUnknown(t *testing.T) {
	e := newEngine(t)
	_, err := e.UpdatePerson(domain.NewNodeID(), PersonPatch{})
	assert.True(t, graph.IsNotFound(err))
}

func TestHandleEventMissingNode(t *testing.T) {
	e := newEngine(t)
	_, err := e.Apply(domain.InsertNode{})
	require.NoError(t, err)

	// a drag referring to a node that no longer exists is reported, not swallowed
	e.state = interaction.DraggingState(domain.NewNodeID(), geom.Pt(400, 300))
	_, err = e.HandleEvent(interaction.Move(450, 300))
	assert.True(t, graph.IsNotFound(err))
}

func TestSnapshotLoad(t *testing.T) {
	e := newEngine(t)
	c1, err := e.Apply(domain.InsertNode{})
	require.NoError(t, err)
	c2, err := e.Apply(domain.InsertNode{Parent: c1.Node})
	require.NoError(t, err)
	sex := domain.SexFemale
	_, err = e.UpdatePerson(c2.Node, PersonPatch{Sex: &sex})
	require.NoError(t, err)
	_, err = e.Apply(domain.NodeClicked{ID: c2.Node})
	require.NoError(t, err)
	tr := geom.Vec(16, 8)
	_, err = e.Apply(domain.Scaled{Scale: 1.25, Translation: &tr})
	require.NoError(t, err)

	snap := e.Snapshot()
	require.NoError(t, snap.Validate())

	other := newEngine(t)
	feed(t, other, interaction.Press(interaction.ButtonRight, 10, 10))
	require.NoError(t, other.Load(snap))

	assert.Equal(t, interaction.Idle, other.State().Kind)
	assert.Equal(t, snap, other.Snapshot())
	assert.Equal(t, surface, other.Graph().Viewport().Bounds)
	assert.Equal(t, domain.SexFemale, other.Graph().MustLookup(c2.Node).Sex())

	t.Run("invalid layout leaves engine untouched", func(t *testing.T) {
		bad := domain.NewLayout()
		bad.AddEdge(domain.NewEdge(domain.NewNodeID(), domain.NewNodeID()))
		assert.Error(t, other.Load(bad))
		assert.Equal(t, 2, other.Graph().Len())
	})
}

func TestTick(t *testing.T) {
	e := newEngine(t)
	e.Tick()
	assert.Equal(t, uint64(2), e.Tick())
}
