package sampling

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bloco-hq/tracehub/pkg/config"
	"bloco-hq/tracehub/pkg/trace"
)

// Decision is the final sampling verdict for a trace.
type Decision int

const (
	// DecisionDrop discards all buffered spans of the trace.
	DecisionDrop Decision = iota

	// DecisionRecordOnly keeps the spans in process but does not export
	// them.
	DecisionRecordOnly

	// DecisionRecordAndSample exports all buffered spans of the trace.
	DecisionRecordAndSample
)

// String returns the canonical upper-case name of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionRecordAndSample:
		return "RECORD_AND_SAMPLE"
	case DecisionRecordOnly:
		return "RECORD_ONLY"
	default:
		return "DROP"
	}
}

// Reason names the rule that produced a keep decision.
type Reason string

const (
	ReasonError    Reason = "error"
	ReasonSlow     Reason = "slow"
	ReasonCritical Reason = "critical_event"
	ReasonHead     Reason = "head_probability"
)

// Sink receives the spans of every sampled trace. The exporter implements
// this; Consume must not block on network I/O.
type Sink interface {
	Consume(spans []*trace.Span)
}

// Observer is notified of sampling outcomes, for metrics.
type Observer interface {
	TraceSampled(reason Reason, spans int)
	TraceDropped(spans int)
	SpansEvicted(spans int)
}

// Stats is a point-in-time view of the span buffer, for the status
// endpoint.
type Stats struct {
	BufferedSpans  int
	BufferedTraces int
	Capacity       int
	Occupancy      float64
}

// now is stubbed in tests.
var now = time.Now

// pending accumulates the completed spans of one trace while its
// evaluation window is open.
type pending struct {
	firstSeen time.Time
	spans     []*trace.Span
	hasError  bool

	earliestStart time.Time
	latestEnd     time.Time
}

// duration is the observed wall-clock extent of the trace so far.
func (p *pending) duration() time.Duration {
	if p.latestEnd.Before(p.earliestStart) {
		return 0
	}
	return p.latestEnd.Sub(p.earliestStart)
}

// Engine is the tail-based sampling decision engine. Completed spans are
// buffered per trace for an evaluation window; when the window closes the
// whole trace gets one verdict:
//
//  1. any span ended with status ERROR: keep
//  2. trace wall-clock duration above the slow threshold: keep
//  3. trace carries a configured critical business event: keep
//  4. otherwise the deterministic head decision for the trace id
//
// Rules 1 to 3 need the completed trace, which is why commit is deferred.
// The buffer is bounded; under overload the oldest buffered traces are
// evicted and dropped, so verdicts are advisory rather than lossless.
type Engine struct {
	store    *config.Store
	sink     Sink
	logger   *slog.Logger
	observer Observer

	mu       sync.Mutex
	traces   map[trace.TraceID]*pending
	arrival  []trace.TraceID
	buffered int
}

// NewEngine creates a sampling engine delivering kept spans to sink.
func NewEngine(store *config.Store, sink Sink, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		sink:   sink,
		logger: logger,
		traces: make(map[trace.TraceID]*pending),
	}
}

// SetObserver registers the sampling observer. Must be called during
// wiring, before spans complete.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// OnSpanComplete buffers a finished span under its trace. Called by the
// tracer exactly once per span; the span is immutable from here on.
func (e *Engine) OnSpanComplete(s *trace.Span) {
	if s == nil || s.IsNoop() {
		return
	}
	max := e.store.Snapshot().Tracing.Sampling.MaxBufferedSpans

	e.mu.Lock()
	p, ok := e.traces[s.TraceID]
	if !ok {
		p = &pending{
			firstSeen:     now(),
			earliestStart: s.Start,
			latestEnd:     s.End,
		}
		e.traces[s.TraceID] = p
		e.arrival = append(e.arrival, s.TraceID)
	}
	p.spans = append(p.spans, s)
	if s.StatusInfo.Code == trace.StatusError {
		p.hasError = true
	}
	if s.Start.Before(p.earliestStart) {
		p.earliestStart = s.Start
	}
	if s.End.After(p.latestEnd) {
		p.latestEnd = s.End
	}
	e.buffered++

	evicted := e.evictLocked(max)
	e.mu.Unlock()

	if evicted > 0 {
		e.logger.Warn("span buffer full, evicted oldest traces",
			slog.Int("evicted_spans", evicted),
			slog.Int("capacity", max))
		if e.observer != nil {
			e.observer.SpansEvicted(evicted)
		}
	}
}

// evictLocked drops oldest traces until the buffer fits max spans.
// Returns the number of spans evicted. Caller holds e.mu.
func (e *Engine) evictLocked(max int) int {
	evicted := 0
	for e.buffered > max && len(e.arrival) > 0 {
		id := e.arrival[0]
		e.arrival = e.arrival[1:]
		p, ok := e.traces[id]
		if !ok {
			continue
		}
		delete(e.traces, id)
		e.buffered -= len(p.spans)
		evicted += len(p.spans)
	}
	return evicted
}

// Run drives the evaluation loop until ctx is cancelled, then flushes
// every still-pending trace so a clean shutdown loses no verdicts.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.Flush()
			return
		case <-ticker.C:
			e.Evaluate()
			ticker.Reset(e.sweepInterval())
		}
	}
}

// minSweepInterval bounds how often the evaluation loop wakes up.
const minSweepInterval = 100 * time.Millisecond

func (e *Engine) sweepInterval() time.Duration {
	interval := e.store.Snapshot().Tracing.Sampling.EvaluationWindow / 5
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	return interval
}

// Evaluate commits a verdict for every trace whose evaluation window has
// closed.
func (e *Engine) Evaluate() {
	e.decideOlderThan(e.store.Snapshot().Tracing.Sampling.EvaluationWindow)
}

// Flush commits a verdict for every buffered trace immediately.
func (e *Engine) Flush() {
	e.decideOlderThan(0)
}

func (e *Engine) decideOlderThan(age time.Duration) {
	cfg := e.store.Snapshot().Tracing.Sampling
	cutoff := now().Add(-age)

	critical := make(map[string]struct{}, len(cfg.CriticalEvents))
	for _, ev := range cfg.CriticalEvents {
		critical[ev] = struct{}{}
	}

	type ruled struct {
		id     trace.TraceID
		p      *pending
		reason Reason
		keep   bool
	}
	var due []ruled

	e.mu.Lock()
	kept := e.arrival[:0]
	for _, id := range e.arrival {
		p, ok := e.traces[id]
		if !ok {
			continue
		}
		if p.firstSeen.After(cutoff) {
			kept = append(kept, id)
			continue
		}
		delete(e.traces, id)
		e.buffered -= len(p.spans)
		reason, keep := e.decide(id, p, cfg, critical)
		due = append(due, ruled{id: id, p: p, reason: reason, keep: keep})
	}
	e.arrival = kept
	e.mu.Unlock()

	for _, d := range due {
		if d.keep {
			e.logger.Debug("trace sampled",
				slog.String("trace_id", d.id.String()),
				slog.String("reason", string(d.reason)),
				slog.Int("spans", len(d.p.spans)))
			if e.observer != nil {
				e.observer.TraceSampled(d.reason, len(d.p.spans))
			}
			e.sink.Consume(d.p.spans)
			continue
		}
		if e.observer != nil {
			e.observer.TraceDropped(len(d.p.spans))
		}
	}
}

// decide applies the keep rules in priority order.
func (e *Engine) decide(id trace.TraceID, p *pending, cfg config.SamplingConfig, critical map[string]struct{}) (Reason, bool) {
	if p.hasError {
		return ReasonError, true
	}
	if p.duration() > cfg.SlowTraceThreshold {
		return ReasonSlow, true
	}
	for _, s := range p.spans {
		if v, ok := s.Attribute("event.type"); ok {
			if _, hit := critical[v]; hit {
				return ReasonCritical, true
			}
		}
	}
	if trace.HeadSampled(id, cfg.Probability) {
		return ReasonHead, true
	}
	return "", false
}

// Stats reports current buffer occupancy.
func (e *Engine) Stats() Stats {
	max := e.store.Snapshot().Tracing.Sampling.MaxBufferedSpans

	e.mu.Lock()
	spans := e.buffered
	traces := len(e.traces)
	e.mu.Unlock()

	occ := 0.0
	if max > 0 {
		occ = float64(spans) / float64(max)
	}
	return Stats{
		BufferedSpans:  spans,
		BufferedTraces: traces,
		Capacity:       max,
		Occupancy:      occ,
	}
}
