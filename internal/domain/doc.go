// Package domain defines the core types of the stemma pedigree canvas.
//
// This package contains the node capability contract the canvas engine is
// written against, together with the value types that flow between the
// engine's components.
//
// # Core Types
//
// Node is the capability contract every drawable node type implements: an
// immutable identity, a movable anchor, a fixed positive size, a containment
// predicate and a content-drawing operation.
//
// NodeID is the 128-bit opaque identity of a node. The zero NodeID means "no
// node".
//
// Edge is a directed parent to child pair of node identities.
//
// Person is the genealogical node: a 128x96 card with an optional sex and
// first and last names.
//
// # Messages
//
// Message is the closed set of high-level intents produced by the interaction
// state machine and applied by the graph model (InsertNode, NodeClicked,
// ClickedOutsideNode, NodeDragged, Scaled, Translated, ViewportBoundsChanged).
//
// # Drawing
//
// Surface is the sink node content is drawn into. The renderer provides one
// that records primitives.
//
// # Layout
//
// Layout is a plain snapshot of the canvas (nodes, edges, selection and
// viewport) used by codecs and the layout store.
package domain
