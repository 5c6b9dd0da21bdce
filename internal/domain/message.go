package domain

import (
	"encoding/json"
	"fmt"

	"stemma/internal/geom"
)

// MessageKind names a message variant on the wire
type MessageKind string

const (
	KindInsertNode            MessageKind = "insert_node"
	KindNodeClicked           MessageKind = "node_clicked"
	KindClickedOutsideNode    MessageKind = "clicked_outside_node"
	KindNodeDragged           MessageKind = "node_dragged"
	KindScaled                MessageKind = "scaled"
	KindTranslated            MessageKind = "translated"
	KindViewportBoundsChanged MessageKind = "viewport_bounds_changed"
)

// Message is a high-level intent applied to the graph model
type Message interface {
	Kind() MessageKind
}

// InsertNode requests a new node, optionally as a child of Parent
type InsertNode struct {
	Parent NodeID `json:"parent,omitempty"`
}

// NodeClicked toggles selection of ID
type NodeClicked struct {
	ID NodeID `json:"id"`
}

// ClickedOutsideNode clears the selection
type ClickedOutsideNode struct{}

// NodeDragged moves ID so its anchor lands on Anchor
type NodeDragged struct {
	ID     NodeID     `json:"id"`
	Anchor geom.Point `json:"anchor"`
}

// Scaled sets the zoom factor and, when present, the translation
type Scaled struct {
	Scale       float64      `json:"scale"`
	Translation *geom.Vector `json:"translation,omitempty"`
}

// Translated sets the translation
type Translated struct {
	Translation geom.Vector `json:"translation"`
}

// ViewportBoundsChanged records the current surface rectangle
type ViewportBoundsChanged struct {
	Bounds geom.Rectangle `json:"bounds"`
}

func (InsertNode) Kind() MessageKind            { return KindInsertNode }
func (NodeClicked) Kind() MessageKind           { return KindNodeClicked }
func (ClickedOutsideNode) Kind() MessageKind    { return KindClickedOutsideNode }
func (NodeDragged) Kind() MessageKind           { return KindNodeDragged }
func (Scaled) Kind() MessageKind                { return KindScaled }
func (Translated) Kind() MessageKind            { return KindTranslated }
func (ViewportBoundsChanged) Kind() MessageKind { return KindViewportBoundsChanged }

// MessageEnvelope is the tagged JSON form of a Message
type MessageEnvelope struct {
	Kind    MessageKind     `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeMessage wraps msg in an envelope
func EncodeMessage(msg Message) (MessageEnvelope, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return MessageEnvelope{}, fmt.Errorf("failed to encode %s: %w", msg.Kind(), err)
	}
	return MessageEnvelope{Kind: msg.Kind(), Payload: payload}, nil
}

// Decode returns the concrete message carried by the envelope
func (e MessageEnvelope) Decode() (Message, error) {
	var msg Message
	switch e.Kind {
	case KindInsertNode:
		msg = &InsertNode{}
	case KindNodeClicked:
		msg = &NodeClicked{}
	case KindClickedOutsideNode:
		return ClickedOutsideNode{}, nil
	case KindNodeDragged:
		msg = &NodeDragged{}
	case KindScaled:
		msg = &Scaled{}
	case KindTranslated:
		msg = &Translated{}
	case KindViewportBoundsChanged:
		msg = &ViewportBoundsChanged{}
	default:
		return nil, fmt.Errorf("unknown message kind %q", e.Kind)
	}

	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, msg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", e.Kind, err)
		}
	}

	switch m := msg.(type) {
	case *InsertNode:
		return *m, nil
	case *NodeClicked:
		return *m, nil
	case *NodeDragged:
		return *m, nil
	case *Scaled:
		return *m, nil
	case *Translated:
		return *m, nil
	case *ViewportBoundsChanged:
		return *m, nil
	}
	return msg, nil
}
