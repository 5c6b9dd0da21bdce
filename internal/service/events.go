package service

import (
	"sync"

	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/interaction"
)

// EventType defines the type of event
type EventType string

const (
	EventNodeInserted       EventType = "node_inserted"
	EventNodeSelected       EventType = "node_selected"
	EventNodeDeselected     EventType = "node_deselected"
	EventNodeDragged        EventType = "node_dragged"
	EventViewportChanged    EventType = "viewport_changed"
	EventNodeUpdated        EventType = "node_updated"
	EventLayoutLoaded       EventType = "layout_loaded"
	EventInteractionChanged EventType = "interaction_changed"
)

// Event represents an event that occurred on the canvas
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// EventName names the event on the SSE stream
func (e Event) EventName() string {
	return string(e.Type)
}

// NodePayload carries an inserted, dragged or updated node
type NodePayload struct {
	Node   domain.NodeRecord `json:"node"`
	Parent domain.NodeID     `json:"parent,omitempty"`
}

// SelectionPayload carries the node whose selection changed
type SelectionPayload struct {
	NodeID domain.NodeID `json:"node_id"`
}

// ViewportPayload carries the new viewport
type ViewportPayload struct {
	Scale       float64        `json:"scale"`
	Translation geom.Vector    `json:"translation"`
	Bounds      geom.Rectangle `json:"bounds"`
}

// LayoutPayload summarizes a loaded layout
type LayoutPayload struct {
	Name  string `json:"name,omitempty"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
}

// InteractionPayload carries the new interaction state
type InteractionPayload struct {
	State interaction.State `json:"state"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
