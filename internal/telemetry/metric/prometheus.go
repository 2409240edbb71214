package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lingvo"

// Request outcomes. Error outcomes reuse the client error kinds.
const (
	OutcomeOK = "ok"
)

// Registry holds all client metrics.
//
// All methods are safe on a nil *Registry so components may run without
// metrics.
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	SessionTransitions  *prometheus.CounterVec
	SupersededResponses *prometheus.CounterVec
}

// NewRegistry creates a registry with the client metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency by endpoint",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		SessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session transitions by operation and result",
		}, []string{"operation", "result"}),
		SupersededResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "superseded_responses_total",
			Help:      "List responses discarded because a newer refetch was issued",
		}, []string{"view"}),
	}

	r.reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.SessionTransitions,
		r.SupersededResponses,
	)
	return r
}

// Register adds an extra collector, e.g. the session state collector.
func (r *Registry) Register(c prometheus.Collector) error {
	if r == nil {
		return nil
	}
	return r.reg.Register(c)
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveRequest records one finished API request.
func (r *Registry) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	r.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// SessionTransition records a login, register, logout, restore or
// invalidate attempt.
func (r *Registry) SessionTransition(operation, result string) {
	if r == nil {
		return
	}
	r.SessionTransitions.WithLabelValues(operation, result).Inc()
}

// Superseded records a discarded stale list response.
func (r *Registry) Superseded(view string) {
	if r == nil {
		return
	}
	r.SupersededResponses.WithLabelValues(view).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
// An empty path is a no-op.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
