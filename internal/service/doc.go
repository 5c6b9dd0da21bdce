// Package service hosts the canvas engine for the stemma server.
//
// # CanvasService
//
// CanvasService owns exactly one canvas.Engine. The engine is not safe for
// concurrent use, so every operation is queued on a bounded command channel
// and executed by the goroutine running Run, which also delivers the periodic
// tick. Callers block until their command has run or their context is done.
//
// Layouts are saved to and restored from a repository.LayoutStore, and family
// seed files are imported one insertion at a time so that every node lands
// where an interactive "add offspring" would have put it.
//
// # Event System
//
// Model changes are published on an EventBus for real-time updates to
// connected clients via Server-Sent Events (SSE). Event types are
// node_inserted, node_selected, node_deselected, node_dragged,
// viewport_changed, node_updated, layout_loaded and interaction_changed.
package service
