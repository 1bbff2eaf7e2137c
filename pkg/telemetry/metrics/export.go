package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bloco-hq/tracehub/pkg/config"
	"bloco-hq/tracehub/pkg/export"
)

// ExportMetrics tracks span delivery to the OTLP backends.
//
// Metrics:
//   - tracehub_tracing_spans_exported_total: spans delivered, by backend
//   - tracehub_tracing_spans_export_dropped_total: spans lost to queue overflow or dead backends
//   - tracehub_tracing_export_duration_seconds: export call latency, by backend
//   - tracehub_tracing_breaker_state: circuit breaker position, by backend (0 closed, 1 open, 2 half-open)
type ExportMetrics struct {
	exportedTotal  *prometheus.CounterVec
	droppedTotal   prometheus.Counter
	exportDuration *prometheus.HistogramVec
	breakerState   *prometheus.GaugeVec
}

// NewExportMetrics creates and registers export metrics with the provided
// registry.
func NewExportMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExportMetrics {
	em := &ExportMetrics{
		exportedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spans_exported_total",
				Help:      "Total number of spans delivered to a backend",
			},
			[]string{"backend"},
		),

		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spans_export_dropped_total",
				Help:      "Total number of sampled spans dropped before delivery",
			},
		),

		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_duration_seconds",
				Help:      "Latency of export calls to a backend",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"backend"},
		),

		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "breaker_state",
				Help:      "Circuit breaker position per backend: 0 closed, 1 open, 2 half-open",
			},
			[]string{"backend"},
		),
	}

	registry.MustRegister(
		em.exportedTotal,
		em.droppedTotal,
		em.exportDuration,
		em.breakerState,
	)

	return em
}

// RecordExported records a successful delivery.
func (em *ExportMetrics) RecordExported(backend string, spans int, elapsed time.Duration) {
	em.exportedTotal.WithLabelValues(backend).Add(float64(spans))
	em.exportDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// RecordDropped records spans lost before delivery.
func (em *ExportMetrics) RecordDropped(spans int) {
	em.droppedTotal.Add(float64(spans))
}

// UpdateBreakerState publishes a breaker position change.
func (em *ExportMetrics) UpdateBreakerState(backend string, state export.BreakerState) {
	var v float64
	switch state {
	case export.BreakerOpen:
		v = 1
	case export.BreakerHalfOpen:
		v = 2
	}
	em.breakerState.WithLabelValues(backend).Set(v)
}
