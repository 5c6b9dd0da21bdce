package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stemma/internal/canvas"
	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/graph"
	"stemma/internal/interaction"
	"stemma/internal/loader"
	"stemma/internal/metrics"
	"stemma/internal/render"
	"stemma/internal/repository"
	"stemma/internal/validation"
	"stemma/internal/viewport"
)

var (
	// ErrInvalidInput marks requests rejected before reaching the engine
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoStore is returned by persistence operations when no store is configured
	ErrNoStore = errors.New("no layout store configured")
	// ErrStopped is returned once the command loop has exited
	ErrStopped = errors.New("canvas service stopped")
)

// Default loop settings
const (
	DefaultTickInterval = 100 * time.Millisecond
	DefaultQueueSize    = 64
)

// Options tunes the command loop
type Options struct {
	TickInterval time.Duration
	QueueSize    int
}

// command is one unit of work executed on the loop goroutine
type command struct {
	name  string
	run   func(*canvas.Engine) (any, error)
	reply chan result
}

type result struct {
	value any
	err   error
}

// CanvasService owns one canvas engine and serializes every operation on it
// through a single goroutine.
type CanvasService struct {
	engine   *canvas.Engine
	store    repository.LayoutStore
	eventBus *EventBus
	metrics  *metrics.Collector
	logger   *zap.Logger

	commands chan command
	done     chan struct{}
	tick     time.Duration
}

// NewCanvasService creates a service around engine. store may be nil, in
// which case Save and Restore fail with ErrNoStore.
func NewCanvasService(engine *canvas.Engine, store repository.LayoutStore, eventBus *EventBus, m *metrics.Collector, logger *zap.Logger, opts Options) *CanvasService {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.TickInterval == 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &CanvasService{
		engine:   engine,
		store:    store,
		eventBus: eventBus,
		metrics:  m,
		logger:   logger.Named("canvas"),
		commands: make(chan command, opts.QueueSize),
		done:     make(chan struct{}),
		tick:     opts.TickInterval,
	}
}

// Run drains the command queue and delivers periodic ticks until ctx is done.
// A negative tick interval disables ticking.
func (s *CanvasService) Run(ctx context.Context) error {
	defer close(s.done)

	var ticks <-chan time.Time
	if s.tick > 0 {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		ticks = ticker.C
	}

	s.logger.Info("canvas loop started", zap.Duration("tick", s.tick))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("canvas loop stopped")
			return ctx.Err()

		case cmd := <-s.commands:
			start := time.Now()
			value, err := cmd.run(s.engine)
			s.metrics.ObserveCommand(cmd.name, time.Since(start))
			cmd.reply <- result{value: value, err: err}

		case <-ticks:
			s.engine.Tick()
			s.metrics.Ticks.Inc()
		}
	}
}

// Done is closed when Run returns
func (s *CanvasService) Done() <-chan struct{} {
	return s.done
}

// call queues fn on the loop goroutine and waits for its result
func call[T any](ctx context.Context, s *CanvasService, name string, fn func(*canvas.Engine) (T, error)) (T, error) {
	var zero T
	cmd := command{
		name: name,
		run: func(e *canvas.Engine) (any, error) {
			return fn(e)
		},
		reply: make(chan result, 1),
	}

	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.done:
		return zero, ErrStopped
	}

	select {
	case res := <-cmd.reply:
		if res.err != nil {
			return zero, res.err
		}
		return res.value.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.done:
		return zero, ErrStopped
	}
}

// HandleEvent feeds one raw input event to the engine
func (s *CanvasService) HandleEvent(ctx context.Context, ev interaction.Event) (canvas.Outcome, error) {
	if err := validation.Struct(ev); err != nil {
		return canvas.Outcome{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return call(ctx, s, "handle_event", func(e *canvas.Engine) (canvas.Outcome, error) {
		before := e.State()
		s.metrics.InputEvents.WithLabelValues(string(ev.Kind)).Inc()

		out, err := e.HandleEvent(ev)
		if out.Message != nil {
			s.metrics.ObserveMessage(string(out.Message.Kind()), err)
		}
		if err != nil {
			s.logger.Warn("input rejected", zap.Stringer("event", ev), zap.Error(err))
			return out, err
		}

		if out.State.Kind != before.Kind || out.State.Node != before.Node {
			s.eventBus.Publish(Event{Type: EventInteractionChanged, Payload: InteractionPayload{State: out.State}})
		}
		s.publishChange(e, out.Change)
		return out, nil
	})
}

// Apply performs a host message against the model
func (s *CanvasService) Apply(ctx context.Context, msg domain.Message) (graph.Change, error) {
	if msg == nil {
		return graph.Change{}, fmt.Errorf("%w: nil message", ErrInvalidInput)
	}
	return call(ctx, s, "apply", func(e *canvas.Engine) (graph.Change, error) {
		return s.apply(e, msg)
	})
}

func (s *CanvasService) apply(e *canvas.Engine, msg domain.Message) (graph.Change, error) {
	change, err := e.Apply(msg)
	s.metrics.ObserveMessage(string(msg.Kind()), err)
	if err != nil {
		return change, fmt.Errorf("apply %s: %w", msg.Kind(), err)
	}
	s.publishChange(e, change)
	return change, nil
}

// InsertNode inserts a new person, below parent when parent is set
func (s *CanvasService) InsertNode(ctx context.Context, parent domain.NodeID) (domain.NodeRecord, error) {
	return call(ctx, s, "insert_node", func(e *canvas.Engine) (domain.NodeRecord, error) {
		change, err := s.apply(e, domain.InsertNode{Parent: parent})
		if err != nil {
			return domain.NodeRecord{}, err
		}
		return domain.RecordOf(e.Graph().MustLookup(change.Node)), nil
	})
}

// Resize records new surface bounds
func (s *CanvasService) Resize(ctx context.Context, bounds geom.Rectangle) error {
	if !bounds.Size().IsPositive() {
		return fmt.Errorf("%w: bounds must have a positive size", ErrInvalidInput)
	}
	_, err := call(ctx, s, "resize", func(e *canvas.Engine) (graph.Change, error) {
		return s.apply(e, domain.ViewportBoundsChanged{Bounds: bounds})
	})
	return err
}

// UpdatePerson edits the name and sex of a person node
func (s *CanvasService) UpdatePerson(ctx context.Context, id domain.NodeID, patch canvas.PersonPatch) (domain.NodeRecord, error) {
	return call(ctx, s, "update_person", func(e *canvas.Engine) (domain.NodeRecord, error) {
		p, err := e.UpdatePerson(id, patch)
		if err != nil {
			return domain.NodeRecord{}, err
		}
		rec := domain.RecordOf(p)
		s.logger.Debug("person updated", zap.Stringer("node", id))
		s.eventBus.Publish(Event{Type: EventNodeUpdated, Payload: NodePayload{Node: rec}})
		return rec, nil
	})
}

// Node returns the record of one node
func (s *CanvasService) Node(ctx context.Context, id domain.NodeID) (domain.NodeRecord, error) {
	return call(ctx, s, "node", func(e *canvas.Engine) (domain.NodeRecord, error) {
		p, err := e.Graph().Lookup(id)
		if err != nil {
			return domain.NodeRecord{}, err
		}
		return domain.RecordOf(p), nil
	})
}

// Snapshot captures the model as a layout
func (s *CanvasService) Snapshot(ctx context.Context) (*domain.Layout, error) {
	return call(ctx, s, "snapshot", func(e *canvas.Engine) (*domain.Layout, error) {
		return e.Snapshot(), nil
	})
}

// Status is a summary of the canvas
type Status struct {
	State    interaction.State `json:"state"`
	Viewport viewport.State    `json:"viewport"`
	Selected domain.NodeID     `json:"selected,omitempty"`
	Nodes    int               `json:"nodes"`
	Edges    int               `json:"edges"`
	Ticks    uint64            `json:"ticks"`
}

// Status returns a summary of the canvas
func (s *CanvasService) Status(ctx context.Context) (Status, error) {
	return call(ctx, s, "status", func(e *canvas.Engine) (Status, error) {
		g := e.Graph()
		return Status{
			State:    e.State(),
			Viewport: g.Viewport(),
			Selected: g.Selected(),
			Nodes:    g.Len(),
			Edges:    len(g.Edges()),
			Ticks:    g.Ticks(),
		}, nil
	})
}

// FrameResult is a rendered frame with its content digest. The frame is
// shared and must not be modified.
type FrameResult struct {
	Frame  *render.Frame
	Digest string
	Cached bool
}

// Frame returns the current frame, rendering only when something changed
func (s *CanvasService) Frame(ctx context.Context) (FrameResult, error) {
	return call(ctx, s, "frame", func(e *canvas.Engine) (FrameResult, error) {
		start := time.Now()
		frame, digest, hit, err := e.Frame()
		if err != nil {
			s.logger.Error("render failed", zap.Error(err))
			return FrameResult{}, fmt.Errorf("render: %w", err)
		}
		s.metrics.ObserveFrame(hit, time.Since(start))
		return FrameResult{Frame: frame, Digest: digest, Cached: hit}, nil
	})
}

// SetStyle replaces the render style
func (s *CanvasService) SetStyle(ctx context.Context, style render.Style) error {
	_, err := call(ctx, s, "set_style", func(e *canvas.Engine) (struct{}, error) {
		e.SetStyle(style)
		return struct{}{}, nil
	})
	return err
}

// Load replaces the model with layout
func (s *CanvasService) Load(ctx context.Context, layout *domain.Layout) error {
	_, err := call(ctx, s, "load", func(e *canvas.Engine) (struct{}, error) {
		return struct{}{}, s.load(e, layout)
	})
	return err
}

func (s *CanvasService) load(e *canvas.Engine, layout *domain.Layout) error {
	if err := e.Load(layout); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	s.metrics.SetModelSize(len(layout.Nodes), len(layout.Edges))
	s.logger.Info("layout loaded",
		zap.String("name", layout.Name),
		zap.Int("nodes", len(layout.Nodes)),
		zap.Int("edges", len(layout.Edges)))
	s.eventBus.Publish(Event{Type: EventLayoutLoaded, Payload: LayoutPayload{
		Name:  layout.Name,
		Nodes: len(layout.Nodes),
		Edges: len(layout.Edges),
	}})
	return nil
}

// ImportFamily inserts every member of a seed in file order, each root at the
// visible center and each child below its parent. It returns the ids of the
// inserted nodes, in seed order.
func (s *CanvasService) ImportFamily(ctx context.Context, family *loader.Family) ([]domain.NodeID, error) {
	return call(ctx, s, "import_family", func(e *canvas.Engine) ([]domain.NodeID, error) {
		ids := make([]domain.NodeID, 0, len(family.People))
		for _, m := range family.People {
			parent := domain.NilNodeID
			if m.Parent >= 0 {
				parent = ids[m.Parent]
			}

			change, err := e.Apply(domain.InsertNode{Parent: parent})
			s.metrics.ObserveMessage(string(domain.KindInsertNode), err)
			if err != nil {
				return ids, fmt.Errorf("import %q: %w", m.Key, err)
			}

			first, last, sex := m.FirstName, m.LastName, m.Sex
			if _, err := e.UpdatePerson(change.Node, canvas.PersonPatch{FirstName: &first, LastName: &last, Sex: &sex}); err != nil {
				return ids, fmt.Errorf("import %q: %w", m.Key, err)
			}

			ids = append(ids, change.Node)
			s.publishChange(e, change)
		}

		s.logger.Info("family imported", zap.String("name", family.Name), zap.Int("people", len(ids)))
		return ids, nil
	})
}

// Save stores the current layout under name
func (s *CanvasService) Save(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}
	layout, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	layout.Name = name
	if err := s.store.SaveLayout(ctx, name, layout); err != nil {
		return fmt.Errorf("save layout %q: %w", name, err)
	}
	s.logger.Info("layout saved", zap.String("name", name), zap.Int("nodes", len(layout.Nodes)))
	return nil
}

// Restore replaces the model with the stored layout name
func (s *CanvasService) Restore(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}
	layout, err := s.store.LoadLayout(ctx, name)
	if err != nil {
		return fmt.Errorf("restore layout %q: %w", name, err)
	}
	return s.Load(ctx, layout)
}

// Layouts lists the stored layouts
func (s *CanvasService) Layouts(ctx context.Context) ([]repository.LayoutInfo, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.ListLayouts(ctx)
}

// publishChange turns a model change into an event. It runs on the loop
// goroutine.
func (s *CanvasService) publishChange(e *canvas.Engine, change graph.Change) {
	if !change.Mutated() {
		return
	}

	g := e.Graph()
	var ev Event
	switch change.Kind {
	case graph.ChangeNodeInserted:
		s.metrics.SetModelSize(g.Len(), len(g.Edges()))
		ev = Event{Type: EventNodeInserted, Payload: NodePayload{
			Node:   domain.RecordOf(g.MustLookup(change.Node)),
			Parent: change.Parent,
		}}
	case graph.ChangeNodeSelected:
		ev = Event{Type: EventNodeSelected, Payload: SelectionPayload{NodeID: change.Node}}
	case graph.ChangeNodeDeselected:
		ev = Event{Type: EventNodeDeselected, Payload: SelectionPayload{NodeID: change.Node}}
	case graph.ChangeNodeMoved:
		ev = Event{Type: EventNodeDragged, Payload: NodePayload{Node: domain.RecordOf(g.MustLookup(change.Node))}}
	case graph.ChangeViewport:
		vp := g.Viewport()
		ev = Event{Type: EventViewportChanged, Payload: ViewportPayload{
			Scale:       vp.Scale,
			Translation: vp.Translation,
			Bounds:      vp.Bounds,
		}}
	default:
		return
	}

	s.logger.Debug("canvas changed", zap.String("change", string(change.Kind)), zap.Stringer("node", change.Node))
	s.eventBus.Publish(ev)
}
