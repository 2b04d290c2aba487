package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// GenerationRequests counts route generation requests by final result
	// (ok, validation, precondition, solver, persistence, internal).
	GenerationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_generation_requests_total", Help: "Route generation requests by result."},
		[]string{"result"},
	)
	// RouteOutcomes counts materialized solver routes by status.
	RouteOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_outcomes_total", Help: "Materialized routes by outcome status."},
		[]string{"status"},
	)
	// ExternalCallDuration records solver and routing engine latency.
	ExternalCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "external_call_duration_seconds", Help: "Outbound call duration in seconds.", Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}},
		[]string{"service", "result"},
	)
	SolverRoutesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_routes_dropped_total", Help: "Solver routes discarded for lack of a driver."},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(GenerationRequests)
		Registry.MustRegister(RouteOutcomes)
		Registry.MustRegister(ExternalCallDuration)
		Registry.MustRegister(SolverRoutesDropped)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
