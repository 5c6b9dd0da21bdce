// Package canvas wires the viewport, interaction machine, graph model and
// renderer into one engine.
//
// An Engine is driven by one owner: raw events go in through HandleEvent,
// host intents through Apply, and frames come out of Frame. It is not safe for
// concurrent use.
package canvas

import (
	"fmt"

	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/graph"
	"stemma/internal/interaction"
	"stemma/internal/render"
	"stemma/internal/viewport"
)

// Engine is a pedigree canvas of Person nodes
type Engine struct {
	graph *graph.Graph[*domain.Person]
	state interaction.State
	style render.Style
	cache render.Cache
}

// Outcome is the result of feeding one raw event to the engine
type Outcome struct {
	State    interaction.State `json:"state"`
	Message  domain.Message    `json:"-"`
	Change   graph.Change      `json:"-"`
	Captured bool              `json:"captured"`
}

// New creates an empty engine
func New(params viewport.Params, style render.Style) *Engine {
	return &Engine{
		graph: graph.New[*domain.Person](domain.NewPerson, params),
		state: interaction.IdleState(),
		style: style,
	}
}

// Graph exposes the model for read access
func (e *Engine) Graph() *graph.Graph[*domain.Person] {
	return e.graph
}

// State returns the current interaction state
func (e *Engine) State() interaction.State {
	return e.state
}

// Style returns the render style
func (e *Engine) Style() render.Style {
	return e.style
}

// SetStyle replaces the render style
func (e *Engine) SetStyle(s render.Style) {
	e.style = s
	e.cache.Invalidate()
}

// HandleEvent runs ev through the interaction machine and applies the
// message it proposes, if any.
func (e *Engine) HandleEvent(ev interaction.Event) (Outcome, error) {
	res := interaction.Handle(ev, e.state, interaction.Input{
		Viewport: e.graph.Viewport(),
		Selected: e.graph.Selected(),
		Nodes:    e.graph,
		Params:   e.graph.Params(),
	})

	if res.State != e.state {
		e.state = res.State
		e.cache.Invalidate()
	}

	out := Outcome{State: res.State, Message: res.Message, Captured: res.Captured}
	if res.Message == nil {
		return out, nil
	}

	change, err := e.Apply(res.Message)
	if err != nil {
		return out, fmt.Errorf("apply %s: %w", res.Message.Kind(), err)
	}
	out.Change = change
	return out, nil
}

// Apply performs a message against the model
func (e *Engine) Apply(msg domain.Message) (graph.Change, error) {
	change, err := e.graph.Apply(msg)
	if err != nil {
		return change, err
	}
	if change.Mutated() {
		e.cache.Invalidate()
	}
	return change, nil
}

// Resize records new surface bounds
func (e *Engine) Resize(bounds geom.Rectangle) (graph.Change, error) {
	return e.Apply(domain.ViewportBoundsChanged{Bounds: bounds})
}

// Tick advances the periodic tick counter
func (e *Engine) Tick() uint64 {
	return e.graph.Tick()
}

// Frame returns the current frame, rendering only when the cache is stale.
// hit reports whether the memoized frame was reused.
func (e *Engine) Frame() (frame *render.Frame, digest string, hit bool, err error) {
	return e.cache.Draw(func() (*render.Frame, error) {
		return render.Render(render.Scene[*domain.Person]{
			Viewport: e.graph.Viewport(),
			Hovered:  e.state.Hovered(),
			Nodes:    e.graph.Nodes(),
			Edges:    e.graph.Edges(),
			Style:    e.style,
		})
	})
}

// PersonPatch is a partial update of a person's payload; nil fields are kept
type PersonPatch struct {
	FirstName *string     `json:"first_name,omitempty"`
	LastName  *string     `json:"last_name,omitempty"`
	Sex       *domain.Sex `json:"sex,omitempty"`
}

// UpdatePerson edits the payload of a person node. Identity, anchor and size
// are never touched.
func (e *Engine) UpdatePerson(id domain.NodeID, patch PersonPatch) (*domain.Person, error) {
	p, err := e.graph.Lookup(id)
	if err != nil {
		return nil, err
	}
	if patch.FirstName != nil {
		p.SetFirstName(*patch.FirstName)
	}
	if patch.LastName != nil {
		p.SetLastName(*patch.LastName)
	}
	if patch.Sex != nil {
		p.SetSex(*patch.Sex)
	}
	e.cache.Invalidate()
	return p, nil
}

// Snapshot captures the model as a layout
func (e *Engine) Snapshot() *domain.Layout {
	l := domain.NewLayout()
	for _, n := range e.graph.Nodes() {
		l.AddNode(domain.RecordOf(n))
	}
	l.Edges = append(l.Edges, e.graph.Edges()...)
	l.Selected = e.graph.Selected()

	vp := e.graph.Viewport()
	l.View = domain.ViewRecord{Scale: vp.Scale, Translation: vp.Translation}
	return l
}

// Load replaces the model with a layout. The surface bounds are kept and the
// interaction state is reset.
func (e *Engine) Load(l *domain.Layout) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	nodes := make([]*domain.Person, 0, len(l.Nodes))
	for _, rec := range l.Nodes {
		nodes = append(nodes, rec.Person())
	}
	if err := e.graph.Restore(nodes, l.Edges, l.Selected); err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	vp := e.graph.Viewport()
	vp.Scale = l.View.Scale
	if vp.Scale == 0 {
		vp.Scale = 1
	}
	vp.Translation = l.View.Translation
	e.graph.SetViewport(vp)

	e.state = interaction.IdleState()
	e.cache.Invalidate()
	return nil
}
