// Package metrics holds the Prometheus collectors of a stemma server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry so several can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	// Input metrics
	InputEvents *prometheus.CounterVec
	Messages    *prometheus.CounterVec

	// Model metrics
	Nodes prometheus.Gauge
	Edges prometheus.Gauge
	Ticks prometheus.Counter

	// Render metrics
	FrameRenders  *prometheus.CounterVec
	RenderSeconds prometheus.Histogram

	// Command loop metrics
	CommandSeconds *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		InputEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "input_events_total",
				Help:      "Raw input events handled, by event kind",
			},
			[]string{"kind"},
		),
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Messages applied to the graph, by message kind and outcome",
			},
			[]string{"kind", "status"},
		),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes currently on the canvas",
		}),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "edges",
			Help:      "Edges currently on the canvas",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Periodic ticks delivered to the canvas",
		}),
		FrameRenders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frame_requests_total",
				Help:      "Frame requests, by cache result",
			},
			[]string{"cache"},
		),
		RenderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent producing a frame",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		CommandSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Time spent executing a canvas command, by command",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		c.InputEvents,
		c.Messages,
		c.Nodes,
		c.Edges,
		c.Ticks,
		c.FrameRenders,
		c.RenderSeconds,
		c.CommandSeconds,
		c.HTTPRequests,
		c.HTTPDuration,
	)
	return c
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveCommand records how long a named command took
func (c *Collector) ObserveCommand(name string, d time.Duration) {
	c.CommandSeconds.WithLabelValues(name).Observe(d.Seconds())
}

// ObserveFrame records a frame request
func (c *Collector) ObserveFrame(hit bool, d time.Duration) {
	if hit {
		c.FrameRenders.WithLabelValues("hit").Inc()
		return
	}
	c.FrameRenders.WithLabelValues("miss").Inc()
	c.RenderSeconds.Observe(d.Seconds())
}

// ObserveMessage records an applied message
func (c *Collector) ObserveMessage(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Messages.WithLabelValues(kind, status).Inc()
}

// SetModelSize records the node and edge counts
func (c *Collector) SetModelSize(nodes, edges int) {
	c.Nodes.Set(float64(nodes))
	c.Edges.Set(float64(edges))
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
