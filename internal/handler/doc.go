// Package handler implements the HTTP API of the stemma server.
//
// CanvasHandler exposes the canvas service as JSON endpoints: raw input
// events, host messages, node insertion and editing, surface bounds, frames,
// import/export and stored layouts. InputStream accepts the same input events
// over a websocket for low-latency pointer streams.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure. Unknown nodes
// and layouts map to 404, rejected input to 400.
//
// GET /api/frame carries the frame digest as its ETag and answers 304 to a
// matching If-None-Match.
//
// # Server-Sent Events
//
// The /events endpoint streams canvas events via SSE, allowing clients to
// receive live notifications of insertions, selection, drags and viewport
// changes.
package handler
