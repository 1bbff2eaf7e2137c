package pipeline

import (
	"time"

	"bloco-hq/tracehub/pkg/export"
	"bloco-hq/tracehub/pkg/sampling"
	"bloco-hq/tracehub/pkg/telemetry/health"
	"bloco-hq/tracehub/pkg/telemetry/metrics"
	"bloco-hq/tracehub/pkg/trace"
)

// Each stage accepts a single observer; these fan one notification out to
// the Prometheus collector and the status tally.

type spanObservers struct {
	collector *metrics.Collector
	tally     *health.Tally
}

func (o spanObservers) SpanStarted(s *trace.Span) {
	o.collector.SpanStarted(s)
	o.tally.SpanStarted(s)
}

func (o spanObservers) SpanEnded(s *trace.Span) {
	o.collector.SpanEnded(s)
	o.tally.SpanEnded(s)
}

type samplingObservers struct {
	collector *metrics.Collector
	tally     *health.Tally
}

func (o samplingObservers) TraceSampled(reason sampling.Reason, spans int) {
	o.collector.TraceSampled(reason, spans)
	o.tally.TraceSampled(reason, spans)
}

func (o samplingObservers) TraceDropped(spans int) {
	o.collector.TraceDropped(spans)
	o.tally.TraceDropped(spans)
}

func (o samplingObservers) SpansEvicted(spans int) {
	o.collector.SpansEvicted(spans)
	o.tally.SpansEvicted(spans)
}

type exportObservers struct {
	collector *metrics.Collector
	tally     *health.Tally
}

func (o exportObservers) SpansExported(backend string, count int, elapsed time.Duration) {
	o.collector.SpansExported(backend, count, elapsed)
	o.tally.SpansExported(backend, count, elapsed)
}

func (o exportObservers) SpansDropped(count int) {
	o.collector.SpansDropped(count)
	o.tally.SpansDropped(count)
}

func (o exportObservers) BreakerState(backend string, state export.BreakerState) {
	o.collector.BreakerState(backend, state)
	o.tally.BreakerState(backend, state)
}
