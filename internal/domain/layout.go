package domain

import (
	"fmt"

	"stemma/internal/geom"
)

// NodeKindPerson is the only node kind persisted today
const NodeKindPerson = "person"

// NodeRecord is the serializable form of a node
type NodeRecord struct {
	ID        NodeID     `json:"id" yaml:"id"`
	Kind      string     `json:"kind" yaml:"kind"`
	Anchor    geom.Point `json:"anchor" yaml:"anchor"`
	Sex       Sex        `json:"sex,omitempty" yaml:"sex,omitempty"`
	FirstName string     `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty" yaml:"last_name,omitempty"`
}

// ViewRecord is the persisted part of the viewport
type ViewRecord struct {
	Scale       float64     `json:"scale" yaml:"scale"`
	Translation geom.Vector `json:"translation" yaml:"translation"`
}

// Layout is a plain snapshot of a canvas used for import, export and storage
type Layout struct {
	Name     string       `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes    []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges    []Edge       `json:"edges" yaml:"edges"`
	Selected NodeID       `json:"selected,omitempty" yaml:"selected,omitempty"`
	View     ViewRecord   `json:"view" yaml:"view"`
}

// NewLayout creates an empty layout at unit scale
func NewLayout() *Layout {
	return &Layout{
		Nodes: make([]NodeRecord, 0),
		Edges: make([]Edge, 0),
		View:  ViewRecord{Scale: 1},
	}
}

// AddNode appends a node record
func (l *Layout) AddNode(rec NodeRecord) {
	l.Nodes = append(l.Nodes, rec)
}

// AddEdge appends an edge
func (l *Layout) AddEdge(e Edge) {
	l.Edges = append(l.Edges, e)
}

// Validate checks that ids are unique and every edge endpoint and the
// selection reference a node of the layout.
func (l *Layout) Validate() error {
	seen := make(map[NodeID]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID.IsZero() {
			return fmt.Errorf("node without id")
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %s", n.ID)
		}
		if n.Kind != "" && n.Kind != NodeKindPerson {
			return fmt.Errorf("node %s: unsupported kind %q", n.ID, n.Kind)
		}
		seen[n.ID] = true
	}
	for _, e := range l.Edges {
		if !seen[e.Start] {
			return &DanglingEdgeError{Edge: e, Missing: e.Start}
		}
		if !seen[e.End] {
			return &DanglingEdgeError{Edge: e, Missing: e.End}
		}
	}
	if !l.Selected.IsZero() && !seen[l.Selected] {
		return fmt.Errorf("selected node %s not in layout", l.Selected)
	}
	return nil
}

// RecordOf converts a node into its serializable form. Node types other than
// Person keep only identity and anchor.
func RecordOf(n Node) NodeRecord {
	rec := NodeRecord{ID: n.ID(), Kind: NodeKindPerson, Anchor: n.Anchor()}
	if p, ok := n.(*Person); ok {
		rec.Sex = p.Sex()
		rec.FirstName = p.FirstName()
		rec.LastName = p.LastName()
	}
	return rec
}

// Person rebuilds the person described by the record
func (r NodeRecord) Person() *Person {
	return RestorePerson(r.ID, r.Anchor, r.Sex, r.FirstName, r.LastName)
}
