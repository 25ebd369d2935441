package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ModelCallMetrics records latency and outcomes for calls to the external
// embedding and generation APIs.
type ModelCallMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewModelCallMetrics registers the model call metrics on the provided registerer.
func NewModelCallMetrics(reg prometheus.Registerer) *ModelCallMetrics {
	if reg == nil {
		return &ModelCallMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "model_call_duration_seconds",
		Help:    "Duration of external model calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "model_call_success",
		Help: "Successful external model calls.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "model_call_failure",
		Help: "Failed external model calls.",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure)
	return &ModelCallMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *ModelCallMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *ModelCallMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *ModelCallMetrics) IncFailure(operation string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
