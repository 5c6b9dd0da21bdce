package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemma/internal/domain"
	"stemma/internal/geom"
)

func sampleLayout() *domain.Layout {
	parent := domain.NodeRecord{ID: domain.NewNodeID(), Kind: domain.NodeKindPerson, Anchor: geom.Pt(0, 0), Sex: domain.SexFemale, FirstName: "Ada", LastName: "Byron"}
	child := domain.NodeRecord{ID: domain.NewNodeID(), Kind: domain.NodeKindPerson, Anchor: geom.Pt(-32.5, 192), Sex: domain.SexMale, FirstName: "Byron"}

	l := domain.NewLayout()
	l.Name = "family"
	l.AddNode(parent)
	l.AddNode(child)
	l.AddEdge(domain.NewEdge(parent.ID, child.ID))
	l.Selected = child.ID
	l.View = domain.ViewRecord{Scale: 1.5, Translation: geom.Vec(10, -20)}
	return l
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", "json"},
		{".json", "json"},
		{"YAML", "yaml"},
		{".yml", "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c, err := ForFormat(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Format())
		})
	}

	_, err := ForFormat("ansible")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			want := sampleLayout()

			var buf bytes.Buffer
			require.NoError(t, c.Export(want, &buf))

			got, err := c.Parse(&buf)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestYAMLParse(t *testing.T) {
	a := "6f1c9a52-3d2e-4c61-9d43-5b0a51c6e001"
	b := "6f1c9a52-3d2e-4c61-9d43-5b0a51c6e002"

	t.Run("defaults kind and view", func(t *testing.T) {
		doc := `
nodes:
  - id: ` + a + `
    anchor: [0, 0]
    sex: f
  - id: ` + b + `
    anchor: [0, 192]
edges:
  - start: ` + a + `
    end: ` + b + `
`
		l, err := NewYAMLCodec().Parse(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, l.Nodes, 2)
		assert.Equal(t, domain.NodeKindPerson, l.Nodes[1].Kind)
		assert.Equal(t, domain.SexFemale, l.Nodes[0].Sex)
		assert.Equal(t, geom.Pt(0, 192), l.Nodes[1].Anchor)
		assert.Equal(t, 1.0, l.View.Scale)
		assert.True(t, l.Selected.IsZero())
	})

	t.Run("dangling edge", func(t *testing.T) {
		doc := `
nodes:
  - id: ` + a + `
    anchor: [0, 0]
edges:
  - start: ` + a + `
    end: ` + b + `
`
		_, err := NewYAMLCodec().Parse(strings.NewReader(doc))
		var dangling *domain.DanglingEdgeError
		assert.ErrorAs(t, err, &dangling)
	})

	t.Run("bad id", func(t *testing.T) {
		_, err := NewYAMLCodec().Parse(strings.NewReader("nodes:\n  - id: nope\n    anchor: [0, 0]\n"))
		assert.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := NewYAMLCodec().Parse(strings.NewReader("widgets: []\n"))
		assert.Error(t, err)
	})
}

func TestJSONParseRejectsUnknownFields(t *testing.T) {
	_, err := NewJSONCodec().Parse(strings.NewReader(`{"nodes":[],"edges":[],"hosts":[]}`))
	assert.Error(t, err)
}
