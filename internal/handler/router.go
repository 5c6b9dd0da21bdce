package handler

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stemma/internal/metrics"
)

// Routes collects what the router serves
type Routes struct {
	Canvas  *CanvasHandler
	Stream  *InputStream
	Events  http.Handler
	Metrics *metrics.Collector
	// InputLimiter paces POST /api/input; nil disables limiting
	InputLimiter *rate.Limiter
	Logger       *zap.Logger
}

// NewRouter registers every endpoint and applies the middleware chain
func NewRouter(rt Routes) http.Handler {
	mux := http.NewServeMux()
	h := rt.Canvas

	// JSON API responses are compressed
	api := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, Compress(fn))
	}

	api("GET /api/graph", h.GetGraph)
	api("GET /api/status", h.GetStatus)
	api("GET /api/frame", h.GetFrame)
	api("POST /api/messages", h.PostMessage)

	var input http.Handler = http.HandlerFunc(h.PostInput)
	if rt.InputLimiter != nil {
		input = RateLimit(rt.InputLimiter)(input)
	}
	mux.Handle("POST /api/input", Compress(input))

	// Node endpoints
	api("POST /api/nodes", h.CreateNode)
	api("GET /api/nodes/{id}", h.GetNode)
	api("PATCH /api/nodes/{id}", h.UpdateNode)

	// Viewport endpoints
	api("PUT /api/viewport/bounds", h.SetBounds)

	// Import/export endpoints
	api("POST /api/import/yaml", h.ImportYAML)
	api("POST /api/import/layout/{format}", h.ImportLayout)
	api("GET /api/export/{format}", h.Export)

	// Stored layouts
	api("GET /api/layouts", h.ListLayouts)
	api("POST /api/layouts/{name}", h.SaveLayout)
	api("POST /api/layouts/{name}/restore", h.RestoreLayout)

	// Streams
	if rt.Events != nil {
		mux.Handle("GET /events", rt.Events)
	}
	if rt.Stream != nil {
		mux.Handle("GET /ws", rt.Stream)
	}
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics.Handler())
	}

	chain := []Middleware{RequestID, Recover(rt.Logger), CORS, Logger(rt.Logger)}
	if rt.Metrics != nil {
		chain = append([]Middleware{Metrics(rt.Metrics)}, chain...)
	}
	return Chain(mux, chain...)
}
