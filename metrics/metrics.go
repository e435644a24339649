// Package metrics tracks per-route request counts and latency for the /metrics
// endpoint and mirrors every observation into a Prometheus registry:
//   - http_request_total: Counter with method, route, and status labels
//   - http_request_duration_seconds: Histogram with method and route labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - process_uptime_seconds: Gauge computed from the collector start time
//
// Each Collector owns its registry, so isolated instances never collide.
package metrics

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ergon73/test-github-actions/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnknownRoute labels requests that did not match a named route
const UnknownRoute = "unknown"

// Timer carries the start instant of one in-flight request.
// The zero Timer means Begin was never called.
type Timer struct {
	start time.Time
}

// IsZero reports whether the timer was never started
func (t Timer) IsZero() bool {
	return t.start.IsZero()
}

type endpointStat struct {
	count          uint64
	totalLatencyMs float64
}

// EndpointSnapshot is the read view of one route
type EndpointSnapshot struct {
	Count        uint64  `json:"count"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Snapshot is a read of the collector. Routes are read under one lock, but
// callers should only rely on each route being internally consistent.
type Snapshot struct {
	UptimeSec     int64                       `json:"uptime_sec"`
	TotalRequests uint64                      `json:"total_requests"`
	Endpoints     map[string]EndpointSnapshot `json:"endpoints"`
}

// Collector aggregates request counts and latency per route
type Collector struct {
	startedAt time.Time
	now       func() time.Time

	mu        sync.Mutex
	endpoints map[string]*endpointStat

	registry        *prometheus.Registry
	requestTotals   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewCollector creates a collector whose start time is now.
// Create it once at process start: its start time is the process start time.
func NewCollector() *Collector {
	return newCollector(time.Now)
}

func newCollector(now func() time.Time) *Collector {
	c := &Collector{
		startedAt: now(),
		now:       now,
		endpoints: make(map[string]*endpointStat),
		registry:  prometheus.NewRegistry(),
		requestTotals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_request_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_request_in_flight",
				Help: "Current in-flight requests",
			},
		),
	}

	uptime := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "process_uptime_seconds",
			Help: "Seconds since the service started",
		},
		func() float64 { return float64(c.uptimeSeconds()) },
	)

	c.registry.MustRegister(
		c.requestTotals,
		c.requestDuration,
		c.inFlight,
		uptime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// StartedAt returns the instant the collector was created
func (c *Collector) StartedAt() time.Time {
	return c.startedAt
}

// Begin records the start of a request
func (c *Collector) Begin() Timer {
	return Timer{start: c.now()}
}

// End records a completed request against route. An empty route is counted
// as UnknownRoute and a zero Timer is ignored. End never panics.
func (c *Collector) End(t Timer, route string) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Warn("Failed to record request metrics", "route", route, "panic", rec)
		}
	}()

	if t.IsZero() {
		return
	}
	if route == "" {
		route = UnknownRoute
	}

	elapsedMs := float64(c.now().Sub(t.start)) / float64(time.Millisecond)
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stat, ok := c.endpoints[route]
	if !ok {
		stat = &endpointStat{}
		c.endpoints[route] = stat
	}
	stat.count++
	stat.totalLatencyMs += elapsedMs
}

// Snapshot returns uptime, the total request count and per-route averages
func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{
		UptimeSec: c.uptimeSeconds(),
		Endpoints: make(map[string]EndpointSnapshot),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for route, stat := range c.endpoints {
		snap.TotalRequests += stat.count
		snap.Endpoints[route] = EndpointSnapshot{
			Count:        stat.count,
			AvgLatencyMs: averageLatency(stat.totalLatencyMs, stat.count),
		}
	}

	return snap
}

// Handler serves the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// uptimeSeconds truncates to whole seconds and never goes below zero
func (c *Collector) uptimeSeconds() int64 {
	uptime := c.now().Sub(c.startedAt)
	if uptime < 0 {
		return 0
	}
	return int64(uptime / time.Second)
}

func (c *Collector) observe(method, route string, status int, elapsed time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Warn("Failed to record Prometheus metrics", "route", route, "panic", rec)
		}
	}()

	if route == "" {
		route = UnknownRoute
	}
	c.requestTotals.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// averageLatency rounds to two decimals and guards the zero count
func averageLatency(totalMs float64, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(totalMs/float64(count)*100) / 100
}
