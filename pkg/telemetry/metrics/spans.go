package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"bloco-hq/tracehub/pkg/config"
	"bloco-hq/tracehub/pkg/trace"
)

// SpanMetrics tracks span lifecycle activity.
//
// Metrics:
//   - tracehub_tracing_spans_created_total: spans started, by component and kind
//   - tracehub_tracing_spans_ended_total: spans ended, by component and status
//   - tracehub_tracing_span_timeouts_total: spans force-closed by the watchdog
type SpanMetrics struct {
	createdTotal  *prometheus.CounterVec
	endedTotal    *prometheus.CounterVec
	timeoutsTotal prometheus.Counter
}

// NewSpanMetrics creates and registers span metrics with the provided
// registry.
func NewSpanMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SpanMetrics {
	sm := &SpanMetrics{
		createdTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spans_created_total",
				Help:      "Total number of spans started",
			},
			[]string{"component", "kind"},
		),

		endedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spans_ended_total",
				Help:      "Total number of spans ended",
			},
			[]string{"component", "status"},
		),

		timeoutsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "span_timeouts_total",
				Help:      "Total number of spans force-closed by the timeout watchdog",
			},
		),
	}

	registry.MustRegister(
		sm.createdTotal,
		sm.endedTotal,
		sm.timeoutsTotal,
	)

	return sm
}

// RecordStarted records a span start.
func (sm *SpanMetrics) RecordStarted(component, kind string) {
	sm.createdTotal.WithLabelValues(component, kind).Inc()
}

// RecordEnded records a span end. A timeout force-close is counted both
// as an errored end and as a timeout.
func (sm *SpanMetrics) RecordEnded(component string, st trace.Status) {
	sm.endedTotal.WithLabelValues(component, st.Code.String()).Inc()
	if st.Code == trace.StatusError && st.Message == "timeout" {
		sm.timeoutsTotal.Inc()
	}
}
