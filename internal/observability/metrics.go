// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "tokeninfo"

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCCallErrors  *prometheus.CounterVec

	// Aggregation metrics
	ReportsTotal       *prometheus.CounterVec
	EnrichmentFailures *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_errors_total",
			Help:      "Total number of failed Solana RPC calls",
		}, []string{"method"}),
		ReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Total number of token reports by outcome (full, partial, failed)",
		}, []string{"outcome"}),
		EnrichmentFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "failures_total",
			Help:      "Total number of off-chain enrichment failures by stage",
		}, []string{"stage"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveRPCCall records RPC call latency and errors.
func (m *Metrics) ObserveRPCCall(method string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		m.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordReport counts an aggregation outcome.
func (m *Metrics) RecordReport(outcome string) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(outcome).Inc()
}

// RecordEnrichmentFailure counts an enrichment failure at stage.
func (m *Metrics) RecordEnrichmentFailure(stage string) {
	if m == nil {
		return
	}
	m.EnrichmentFailures.WithLabelValues(stage).Inc()
}
