package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemma/internal/geom"
)

func TestNodeID(t *testing.T) {
	t.Run("fresh ids are unique and non-zero", func(t *testing.T) {
		a, b := NewNodeID(), NewNodeID()
		assert.False(t, a.IsZero())
		assert.NotEqual(t, a, b)
	})

	t.Run("zero id has empty text form", func(t *testing.T) {
		assert.True(t, NilNodeID.IsZero())
		assert.Equal(t, "", NilNodeID.String())

		parsed, err := ParseNodeID("")
		require.NoError(t, err)
		assert.True(t, parsed.IsZero())
	})

	t.Run("text round trip", func(t *testing.T) {
		id := NewNodeID()
		parsed, err := ParseNodeID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		_, err := ParseNodeID("not-a-uuid")
		assert.Error(t, err)
	})

	t.Run("json uses canonical string", func(t *testing.T) {
		id := MustParseNodeID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
		data, err := json.Marshal(Edge{Start: id})
		require.NoError(t, err)
		assert.JSONEq(t, `{"start":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","end":""}`, string(data))
	})
}

func TestPerson(t *testing.T) {
	p := NewPerson(geom.Pt(10, 20))

	t.Run("fixed size", func(t *testing.T) {
		assert.Equal(t, geom.Size{Width: 128, Height: 96}, p.Size())
	})

	t.Run("closed bounds", func(t *testing.T) {
		assert.True(t, p.Contains(geom.Pt(10, 20)))
		assert.True(t, p.Contains(geom.Pt(138, 116)))
		assert.False(t, p.Contains(geom.Pt(138.01, 50)))
		assert.False(t, p.Contains(geom.Pt(9.99, 50)))
	})

	t.Run("set anchor moves bounds", func(t *testing.T) {
		q := NewPerson(geom.Origin)
		q.SetAnchor(geom.Pt(64, 32))
		assert.Equal(t, geom.Pt(64, 32), q.Anchor())
		assert.False(t, q.Contains(geom.Pt(0, 0)))
	})
}

type recordingSurface struct {
	strokes []Color
	texts   []Text
}

func (r *recordingSurface) FillRectangle(geom.Rectangle, Color) {}
func (r *recordingSurface) StrokeRectangle(_ geom.Rectangle, _ float64, c Color) {
	r.strokes = append(r.strokes, c)
}
func (r *recordingSurface) StrokeLine(geom.Point, geom.Point, float64, Color) {}
func (r *recordingSurface) FillText(t Text)                                    { r.texts = append(r.texts, t) }

func TestPersonDrawContent(t *testing.T) {
	tests := []struct {
		name      string
		sex       Sex
		first     string
		last      string
		wantTexts int
		border    Color
	}{
		{"anonymous", SexUnknown, "", "", 0, UnknownBorder},
		{"first name only", SexMale, "Ada", "", 1, MaleBorder},
		{"full name", SexFemale, "Ada", "Lovelace", 2, FemaleBorder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := RestorePerson(NewNodeID(), geom.Origin, tt.sex, tt.first, tt.last)
			s := &recordingSurface{}
			p.DrawContent(s, false)

			require.Len(t, s.strokes, 1)
			assert.Equal(t, tt.border, s.strokes[0])
			assert.Len(t, s.texts, tt.wantTexts)
		})
	}

	t.Run("name lines are inset and stacked", func(t *testing.T) {
		p := RestorePerson(NewNodeID(), geom.Pt(100, 200), SexUnknown, "Ada", "Lovelace")
		s := &recordingSurface{}
		p.DrawContent(s, false)

		require.Len(t, s.texts, 2)
		assert.InDelta(t, 100+128*0.2, s.texts[0].Position.X, 1e-9)
		assert.InDelta(t, 200+96*0.2, s.texts[0].Position.Y, 1e-9)
		assert.InDelta(t, s.texts[0].Position.Y+16+5, s.texts[1].Position.Y, 1e-9)
	})

	t.Run("hovered border is translucent", func(t *testing.T) {
		p := NewPerson(geom.Origin)
		s := &recordingSurface{}
		p.DrawContent(s, true)
		assert.Equal(t, 0.5, s.strokes[0].A)
	})
}

func TestParseSex(t *testing.T) {
	for in, want := range map[string]Sex{"": SexUnknown, "Male": SexMale, "f": SexFemale} {
		got, err := ParseSex(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSex("other")
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, White, c)

	c, err = ParseHexColor("#00000080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, c.A, 1e-9)
	assert.Equal(t, "#00000080", c.Hex())

	_, err = ParseHexColor("#12")
	assert.Error(t, err)
}

func TestMessageEnvelope(t *testing.T) {
	id := NewNodeID()
	tr := geom.Vec(3, -4)

	msgs := []Message{
		InsertNode{Parent: id},
		InsertNode{},
		NodeClicked{ID: id},
		ClickedOutsideNode{},
		NodeDragged{ID: id, Anchor: geom.Pt(32, 64)},
		Scaled{Scale: 1.5, Translation: &tr},
		Scaled{Scale: 0.5},
		Translated{Translation: tr},
		ViewportBoundsChanged{Bounds: geom.Rectangle{Width: 800, Height: 600}},
	}

	for _, msg := range msgs {
		t.Run(string(msg.Kind()), func(t *testing.T) {
			env, err := EncodeMessage(msg)
			require.NoError(t, err)

			data, err := json.Marshal(env)
			require.NoError(t, err)

			var back MessageEnvelope
			require.NoError(t, json.Unmarshal(data, &back))

			decoded, err := back.Decode()
			require.NoError(t, err)
			assert.Equal(t, msg, decoded)
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := MessageEnvelope{Kind: "explode"}.Decode()
		assert.Error(t, err)
	})
}

func TestLayoutValidate(t *testing.T) {
	a := NodeRecord{ID: NewNodeID(), Kind: NodeKindPerson}
	b := NodeRecord{ID: NewNodeID(), Kind: NodeKindPerson}

	t.Run("valid", func(t *testing.T) {
		l := NewLayout()
		l.AddNode(a)
		l.AddNode(b)
		l.AddEdge(NewEdge(a.ID, b.ID))
		l.Selected = b.ID
		assert.NoError(t, l.Validate())
	})

	t.Run("dangling edge", func(t *testing.T) {
		l := NewLayout()
		l.AddNode(a)
		l.AddEdge(NewEdge(a.ID, b.ID))

		var dangling *DanglingEdgeError
		require.True(t, errors.As(l.Validate(), &dangling))
		assert.Equal(t, b.ID, dangling.Missing)
	})

	t.Run("duplicate node", func(t *testing.T) {
		l := NewLayout()
		l.AddNode(a)
		l.AddNode(a)
		assert.Error(t, l.Validate())
	})

	t.Run("unknown selection", func(t *testing.T) {
		l := NewLayout()
		l.AddNode(a)
		l.Selected = b.ID
		assert.Error(t, l.Validate())
	})
}

func TestRecordRoundTrip(t *testing.T) {
	p := RestorePerson(NewNodeID(), geom.Pt(32, 64), SexFemale, "Ada", "Lovelace")
	back := RecordOf(p).Person()
	assert.Equal(t, p, back)
}
