// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitplan"

// Metrics groups all collectors of the service. A nil *Metrics is valid and records nothing.
type Metrics struct {
	modelAttempts *prometheus.CounterVec
	modelRetries  prometheus.Counter
	modelLatency  prometheus.Histogram
	generations   *prometheus.CounterVec
	savedPlans    prometheus.Gauge
	httpRequests  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		modelAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_attempts_total",
			Help:      "Requests sent to the generation endpoint, by outcome.",
		}, []string{"outcome"}),
		modelRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_retries_total",
			Help:      "Retries scheduled after a transient upstream failure.",
		}),
		modelLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_attempt_duration_seconds",
			Help:      "Latency of single generation attempts.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_generations_total",
			Help:      "Plan generation requests, by outcome.",
		}, []string{"outcome"}),
		savedPlans: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "saved_plans",
			Help:      "Number of plans currently held by the plan store.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route and status.",
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}
}

// ObserveModelAttempt records one request to the model endpoint.
func (m *Metrics) ObserveModelAttempt(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.modelAttempts.WithLabelValues(outcome).Inc()
	m.modelLatency.Observe(took.Seconds())
}

// IncModelRetry records a scheduled retry.
func (m *Metrics) IncModelRetry() {
	if m == nil {
		return
	}
	m.modelRetries.Inc()
}

// ObserveGeneration records the outcome of a full generate call.
func (m *Metrics) ObserveGeneration(outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
}

// SetSavedPlans publishes the plan store size.
func (m *Metrics) SetSavedPlans(n int) {
	if m == nil {
		return
	}
	m.savedPlans.Set(float64(n))
}

// ObserveHTTP records a handled HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
