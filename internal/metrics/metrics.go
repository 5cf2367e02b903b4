// Package metrics exposes prometheus collectors fed from the event bus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventbus "github.com/hanpama/hellograph/internal/eventbus"
	events "github.com/hanpama/hellograph/internal/events"
)

// Registry holds the hellograph collectors.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	RequestsRejected     *prometheus.CounterVec
	OperationsTotal      *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
	ExecutorFaults       prometheus.Counter
}

// NewRegistry creates a Registry on a fresh prometheus registry that also
// carries the Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r := &Registry{registry: reg}
	f := promauto.With(reg)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hellograph_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hellograph_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
	r.HTTPRequestsInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "hellograph_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
	r.RequestsRejected = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hellograph_requests_rejected_total",
			Help: "Requests answered with a client error before execution",
		},
		[]string{"status", "reason"},
	)
	r.OperationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hellograph_graphql_operations_total",
			Help: "Total number of executed GraphQL operations",
		},
		[]string{"type", "status"},
	)
	r.OperationDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hellograph_graphql_operation_duration_seconds",
			Help:    "GraphQL execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
	r.ExecutorFaults = f.NewCounter(
		prometheus.CounterOpts{
			Name: "hellograph_executor_faults_total",
			Help: "Executor results that carried neither data nor errors, or panicked",
		},
	)
	return r
}

// Gatherer returns the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordHTTPRequest records a finished HTTP request.
func (r *Registry) RecordHTTPRequest(method string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	r.HTTPRequestsTotal.WithLabelValues(method, s).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, s).Observe(duration.Seconds())
}

// RecordOperation records an executed GraphQL operation.
func (r *Registry) RecordOperation(opType string, status int, duration time.Duration, fault bool) {
	if opType == "" {
		opType = "unknown"
	}
	r.OperationsTotal.WithLabelValues(opType, strconv.Itoa(status)).Inc()
	r.OperationDuration.WithLabelValues(opType).Observe(duration.Seconds())
	if fault {
		r.ExecutorFaults.Inc()
	}
}

// Subscribe feeds r from the global event bus.
func (r *Registry) Subscribe() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(context.Context, events.HTTPStart) {
			r.HTTPRequestsInFlight.Inc()
		}),
		eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
			r.HTTPRequestsInFlight.Dec()
			r.RecordHTTPRequest(e.Request.Method, e.Status, e.Duration)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.RequestRejected) {
			r.RequestsRejected.WithLabelValues(strconv.Itoa(e.Status), e.Message).Inc()
		}),
		eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) {
			r.RecordOperation(e.OperationType, e.Status, e.Duration, e.Fault != nil)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
