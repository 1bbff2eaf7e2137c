package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"bloco-hq/tracehub/pkg/config"
)

// SamplingMetrics tracks sampling verdicts and span buffer pressure.
//
// Metrics:
//   - tracehub_tracing_spans_sampled_total: spans kept, by rule
//   - tracehub_tracing_spans_discarded_total: spans dropped by a verdict
//   - tracehub_tracing_buffer_evictions_total: spans evicted under overload
//   - tracehub_tracing_buffer_occupancy_ratio: buffer fill level, 0 to 1
type SamplingMetrics struct {
	sampledTotal    *prometheus.CounterVec
	discardedTotal  prometheus.Counter
	evictionsTotal  prometheus.Counter
	bufferOccupancy prometheus.Gauge
}

// NewSamplingMetrics creates and registers sampling metrics with the
// provided registry.
func NewSamplingMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SamplingMetrics {
	sm := &SamplingMetrics{
		sampledTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spans_sampled_total",
				Help:      "Total number of spans kept by a sampling verdict",
			},
			[]string{"reason"},
		),

		discardedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spans_discarded_total",
				Help:      "Total number of spans dropped by a sampling verdict",
			},
		),

		evictionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "buffer_evictions_total",
				Help:      "Total number of spans evicted from the full span buffer",
			},
		),

		bufferOccupancy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "buffer_occupancy_ratio",
				Help:      "Span buffer fill level between 0 and 1",
			},
		),
	}

	registry.MustRegister(
		sm.sampledTotal,
		sm.discardedTotal,
		sm.evictionsTotal,
		sm.bufferOccupancy,
	)

	return sm
}

// RecordSampled records spans kept by the named rule.
func (sm *SamplingMetrics) RecordSampled(reason string, spans int) {
	sm.sampledTotal.WithLabelValues(reason).Add(float64(spans))
}

// RecordDropped records spans discarded by a drop verdict.
func (sm *SamplingMetrics) RecordDropped(spans int) {
	sm.discardedTotal.Add(float64(spans))
}

// RecordEvicted records spans evicted under buffer overload.
func (sm *SamplingMetrics) RecordEvicted(spans int) {
	sm.evictionsTotal.Add(float64(spans))
}

// UpdateOccupancy publishes the buffer fill ratio.
func (sm *SamplingMetrics) UpdateOccupancy(ratio float64) {
	sm.bufferOccupancy.Set(ratio)
}
