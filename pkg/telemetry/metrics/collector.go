package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bloco-hq/tracehub/pkg/config"
	"bloco-hq/tracehub/pkg/export"
	"bloco-hq/tracehub/pkg/sampling"
	"bloco-hq/tracehub/pkg/trace"
)

// Collector is the single registration point for all Prometheus metrics
// exposed by the tracing core. It implements the observer interfaces of
// the tracer, the sampling engine, and the exporter, so wiring it in is
// one SetObserver call per component.
//
// All updates are pre-allocated counter or gauge operations; the hot path
// never allocates label slices beyond what client_golang requires.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	spanMetrics     *SpanMetrics
	samplingMetrics *SamplingMetrics
	exportMetrics   *ExportMetrics
	flagMetrics     *FlagMetrics
}

// NewCollector creates a metrics collector registered against registry.
// If registry is nil a fresh one is created. The configuration is copied;
// cfg usually points into a shared store snapshot and is never written to.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	conf := *cfg
	if conf.Namespace == "" {
		conf.Namespace = config.DefaultMetricsNamespace
	}
	if conf.Subsystem == "" {
		conf.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:          &conf,
		registry:        registry,
		spanMetrics:     NewSpanMetrics(&conf, registry),
		samplingMetrics: NewSamplingMetrics(&conf, registry),
		exportMetrics:   NewExportMetrics(&conf, registry),
		flagMetrics:     NewFlagMetrics(&conf, registry),
	}
}

// SpanStarted implements trace.Observer.
func (c *Collector) SpanStarted(s *trace.Span) {
	if !c.config.Enabled {
		return
	}
	c.spanMetrics.RecordStarted(s.Component.String(), s.Kind.String())
}

// SpanEnded implements trace.Observer.
func (c *Collector) SpanEnded(s *trace.Span) {
	if !c.config.Enabled {
		return
	}
	c.spanMetrics.RecordEnded(s.Component.String(), s.StatusInfo)
}

// TraceSampled implements sampling.Observer.
func (c *Collector) TraceSampled(reason sampling.Reason, spans int) {
	if !c.config.Enabled {
		return
	}
	c.samplingMetrics.RecordSampled(string(reason), spans)
}

// TraceDropped implements sampling.Observer.
func (c *Collector) TraceDropped(spans int) {
	if !c.config.Enabled {
		return
	}
	c.samplingMetrics.RecordDropped(spans)
}

// SpansEvicted implements sampling.Observer.
func (c *Collector) SpansEvicted(spans int) {
	if !c.config.Enabled {
		return
	}
	c.samplingMetrics.RecordEvicted(spans)
}

// UpdateBufferOccupancy publishes the span buffer fill ratio. Called
// periodically from the pipeline status loop.
func (c *Collector) UpdateBufferOccupancy(stats sampling.Stats) {
	if !c.config.Enabled {
		return
	}
	c.samplingMetrics.UpdateOccupancy(stats.Occupancy)
}

// SpansExported implements export.Observer.
func (c *Collector) SpansExported(backend string, count int, elapsed time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.exportMetrics.RecordExported(backend, count, elapsed)
}

// SpansDropped implements export.Observer.
func (c *Collector) SpansDropped(count int) {
	if !c.config.Enabled {
		return
	}
	c.exportMetrics.RecordDropped(count)
}

// BreakerState implements export.Observer.
func (c *Collector) BreakerState(backend string, state export.BreakerState) {
	if !c.config.Enabled {
		return
	}
	c.exportMetrics.UpdateBreakerState(backend, state)
}

// UpdateFlags publishes the current feature-flag positions. Called at
// startup and on every configuration refresh.
func (c *Collector) UpdateFlags(gate *trace.FlagGate) {
	if !c.config.Enabled {
		return
	}
	for _, comp := range trace.Components() {
		c.flagMetrics.UpdateFlag(comp.String(), gate.Enabled(comp))
	}
}

// Registry returns the Prometheus registry, for mounting the /metrics
// endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
