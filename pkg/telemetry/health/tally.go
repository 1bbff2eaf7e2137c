package health

import (
	"sync/atomic"
	"time"

	"bloco-hq/tracehub/pkg/export"
	"bloco-hq/tracehub/pkg/sampling"
	"bloco-hq/tracehub/pkg/trace"
)

// Tally keeps running span counts for the status endpoint: created,
// exported, and dropped. It implements the observer interfaces of the
// trace, sampling, and export packages with plain atomic counters, so it
// can sit next to the Prometheus collector in the observer fan-out.
type Tally struct {
	created  atomic.Uint64
	exported atomic.Uint64
	dropped  atomic.Uint64
}

// NewTally creates a zeroed tally.
func NewTally() *Tally {
	return &Tally{}
}

// SpanCounts is the tally snapshot carried in the status payload.
type SpanCounts struct {
	Created  uint64 `json:"created"`
	Exported uint64 `json:"exported"`
	Dropped  uint64 `json:"dropped"`
}

// Counts returns the current totals.
func (t *Tally) Counts() SpanCounts {
	return SpanCounts{
		Created:  t.created.Load(),
		Exported: t.exported.Load(),
		Dropped:  t.dropped.Load(),
	}
}

// SpanStarted implements trace.Observer.
func (t *Tally) SpanStarted(*trace.Span) {
	t.created.Add(1)
}

// SpanEnded implements trace.Observer.
func (t *Tally) SpanEnded(*trace.Span) {}

// TraceSampled implements sampling.Observer.
func (t *Tally) TraceSampled(sampling.Reason, int) {}

// TraceDropped implements sampling.Observer.
func (t *Tally) TraceDropped(spans int) {
	t.dropped.Add(uint64(spans))
}

// SpansEvicted implements sampling.Observer.
func (t *Tally) SpansEvicted(spans int) {
	t.dropped.Add(uint64(spans))
}

// SpansExported implements export.Observer.
func (t *Tally) SpansExported(_ string, count int, _ time.Duration) {
	t.exported.Add(uint64(count))
}

// SpansDropped implements export.Observer.
func (t *Tally) SpansDropped(count int) {
	t.dropped.Add(uint64(count))
}

// BreakerState implements export.Observer.
func (t *Tally) BreakerState(string, export.BreakerState) {}
