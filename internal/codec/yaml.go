package codec

import (
	"fmt"
	"io"

	"stemma/internal/domain"
	"stemma/internal/geom"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlLayout represents the YAML structure for layout data
type yamlLayout struct {
	Name     string     `yaml:"name,omitempty"`
	Nodes    []yamlNode `yaml:"nodes"`
	Edges    []yamlEdge `yaml:"edges"`
	Selected string     `yaml:"selected,omitempty"`
	View     *yamlView  `yaml:"view,omitempty"`
}

type yamlNode struct {
	ID        string     `yaml:"id"`
	Kind      string     `yaml:"kind,omitempty"`
	Anchor    [2]float64 `yaml:"anchor,flow"`
	Sex       string     `yaml:"sex,omitempty"`
	FirstName string     `yaml:"first_name,omitempty"`
	LastName  string     `yaml:"last_name,omitempty"`
}

type yamlEdge struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type yamlView struct {
	Scale       float64    `yaml:"scale"`
	Translation [2]float64 `yaml:"translation,flow"`
}

// Parse imports a layout from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Layout, error) {
	var yl yamlLayout
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&yl); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	layout := domain.NewLayout()
	layout.Name = yl.Name

	// Convert nodes
	for i, yn := range yl.Nodes {
		id, err := domain.ParseNodeID(yn.ID)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		sex, err := domain.ParseSex(yn.Sex)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		kind := yn.Kind
		if kind == "" {
			kind = domain.NodeKindPerson
		}
		layout.AddNode(domain.NodeRecord{
			ID:        id,
			Kind:      kind,
			Anchor:    geom.Pt(yn.Anchor[0], yn.Anchor[1]),
			Sex:       sex,
			FirstName: yn.FirstName,
			LastName:  yn.LastName,
		})
	}

	// Convert edges
	for i, ye := range yl.Edges {
		start, err := domain.ParseNodeID(ye.Start)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		end, err := domain.ParseNodeID(ye.End)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		layout.AddEdge(domain.NewEdge(start, end))
	}

	selected, err := domain.ParseNodeID(yl.Selected)
	if err != nil {
		return nil, fmt.Errorf("selected: %w", err)
	}
	layout.Selected = selected

	if yl.View != nil {
		layout.View = domain.ViewRecord{
			Scale:       yl.View.Scale,
			Translation: geom.Vec(yl.View.Translation[0], yl.View.Translation[1]),
		}
	}

	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	return layout, nil
}

// Export exports a layout to YAML
func (c *YAMLCodec) Export(layout *domain.Layout, w io.Writer) error {
	yl := yamlLayout{
		Name:     layout.Name,
		Nodes:    make([]yamlNode, 0, len(layout.Nodes)),
		Edges:    make([]yamlEdge, 0, len(layout.Edges)),
		Selected: layout.Selected.String(),
		View: &yamlView{
			Scale:       layout.View.Scale,
			Translation: [2]float64{layout.View.Translation.X, layout.View.Translation.Y},
		},
	}

	// Convert nodes
	for _, n := range layout.Nodes {
		yl.Nodes = append(yl.Nodes, yamlNode{
			ID:        n.ID.String(),
			Kind:      n.Kind,
			Anchor:    [2]float64{n.Anchor.X, n.Anchor.Y},
			Sex:       string(n.Sex),
			FirstName: n.FirstName,
			LastName:  n.LastName,
		})
	}

	// Convert edges
	for _, e := range layout.Edges {
		yl.Edges = append(yl.Edges, yamlEdge{
			Start: e.Start.String(),
			End:   e.End.String(),
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yl); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
