package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveModelAttempt("success", 120*time.Millisecond)
	m.ObserveModelAttempt("upstream_error", time.Second)
	m.ObserveModelAttempt("upstream_error", time.Second)
	m.IncModelRetry()
	m.ObserveGeneration("success")
	m.SetSavedPlans(4)
	m.ObserveHTTP("GET", "/plans", 200)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelAttempts.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.modelAttempts.WithLabelValues("upstream_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("success")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.savedPlans))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/plans", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveModelAttempt("success", time.Second)
		m.IncModelRetry()
		m.ObserveGeneration("success")
		m.SetSavedPlans(1)
		m.ObserveHTTP("GET", "/", 200)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveGeneration("parse_error")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fitplan_plan_generations_total{outcome="parse_error"} 1`)
}
