package trace

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"

	"bloco-hq/tracehub/pkg/config"
)

// Sanitizer classifies and transforms attribute values before they attach
// to a span. Implementations must be pure and safe for concurrent use.
type Sanitizer interface {
	Sanitize(key, value string) string
}

// Completer receives every finished span exactly once. The sampling
// decision engine implements this; ownership of the span moves to the
// completer and the span must not be mutated afterwards.
type Completer interface {
	OnSpanComplete(s *Span)
}

// Observer is notified of span lifecycle transitions, for metrics.
type Observer interface {
	SpanStarted(s *Span)
	SpanEnded(s *Span)
}

// knuthFactor spreads sequential trace ids uniformly across the uint64
// space for the deterministic head sampling decision.
const knuthFactor = uint64(1111111111111111111)

// Tracer is the span lifecycle manager. It creates spans gated by the
// per-component feature flags, routes every attribute through the
// sanitizer, tracks active spans for the timeout watchdog, and hands
// finished spans to the sampling engine.
//
// Span creation and closure never block on I/O.
type Tracer struct {
	store     *config.Store
	gate      *FlagGate
	sanitizer Sanitizer
	completer Completer
	observer  Observer
	logger    *slog.Logger
	watchdog  *watchdog

	// noop is the shared sentinel returned when a component's flag is off,
	// so call sites can end and annotate unconditionally.
	noop *Span
}

// NewTracer creates a span lifecycle manager reading its configuration
// from store. The gate is subscribed to configuration refreshes so flag
// toggles take effect without restart.
func NewTracer(store *config.Store, sanitizer Sanitizer, completer Completer, logger *slog.Logger) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracer{
		store:     store,
		gate:      NewFlagGate(store.Snapshot().Tracing.Flags),
		sanitizer: sanitizer,
		completer: completer,
		logger:    logger,
		noop:      &Span{noop: true},
	}
	t.watchdog = newWatchdog(t, logger)
	store.OnSwap(func(cfg *config.Config) {
		t.gate.Update(cfg.Tracing.Flags)
	})
	return t
}

// SetObserver registers the lifecycle observer. Must be called during
// wiring, before spans are started.
func (t *Tracer) SetObserver(o Observer) {
	t.observer = o
}

// Gate returns the feature-flag gate.
func (t *Tracer) Gate() *FlagGate {
	return t.gate
}

// StartSpan opens a span named name under the parent resolved from ctx
// (the active span, or a remote context left by extract/restore). When the
// component's feature flag is off it returns the shared no-op sentinel and
// ctx unchanged, at the cost of a single atomic read.
func (t *Tracer) StartSpan(ctx context.Context, name string, kind Kind, component Component) (context.Context, *Span) {
	if !t.gate.Enabled(component) {
		return ctx, t.noop
	}

	parent := SpanContextFromContext(ctx)

	s := &Span{
		Name:      name,
		Kind:      kind,
		Component: component,
		SpanID:    NewSpanID(),
		Start:     now(),
		tracer:    t,
	}
	if parent.IsValid() {
		s.TraceID = parent.TraceID
		s.ParentID = parent.SpanID
	} else {
		s.TraceID = NewTraceID()
	}

	t.watchdog.track(s)
	if t.observer != nil {
		t.observer.SpanStarted(s)
	}

	return ContextWithSpan(ctx, s), s
}

// headSampled is the deterministic probabilistic head decision: the same
// trace id always produces the same answer for a given probability, so
// every span of a trace shares one decision.
func (t *Tracer) headSampled(id TraceID) bool {
	rate := t.store.Snapshot().Tracing.Sampling.Probability
	return HeadSampled(id, rate)
}

// HeadSampled reports the deterministic head sampling decision for a trace
// id at the given probability.
func HeadSampled(id TraceID, rate float64) bool {
	if rate >= 1 {
		return true
	}
	if rate <= 0 {
		return false
	}
	return id.Low()*knuthFactor < uint64(rate*math.MaxUint64)
}

// spanEnded is called exactly once per span, from EndWithStatus.
func (t *Tracer) spanEnded(s *Span) {
	t.watchdog.forget(s)
	if t.observer != nil {
		t.observer.SpanEnded(s)
	}
	if t.completer != nil {
		t.completer.OnSpanComplete(s)
	}
}

// Run drives the timeout watchdog until ctx is cancelled. Spans left open
// beyond the configured span timeout are force-closed with an error status
// and reason "timeout".
func (t *Tracer) Run(ctx context.Context) {
	t.watchdog.run(ctx, t.store)
}

// WithSpan runs fn inside a span. An error return or a panic inside fn is
// recorded on the span as an exception event and the span ends with an
// error status; the error (or panic) is always re-raised unchanged, so
// tracing stays transparent to business failure semantics.
func WithSpan(ctx context.Context, t *Tracer, name string, kind Kind, component Component, fn func(ctx context.Context) error) (err error) {
	ctx, span := t.StartSpan(ctx, name, kind, component)

	defer func() {
		if r := recover(); r != nil {
			recordException(span, fmt.Errorf("panic: %v", r))
			span.EndWithStatus(Status{Code: StatusError, Message: fmt.Sprintf("panic: %v", r)})
			panic(r)
		}
	}()

	err = fn(ctx)
	if err != nil {
		recordException(span, err)
		span.EndError(err)
		return err
	}
	span.EndOK()
	return nil
}

// recordException attaches an exception event with type, message, and a
// condensed stack. Attribute sanitization masks identifiers embedded in
// the message.
func recordException(s *Span, err error) {
	if s.IsNoop() || err == nil {
		return
	}
	s.AddEvent("exception",
		Attribute{Key: "exception.type", Value: fmt.Sprintf("%T", err)},
		Attribute{Key: "exception.message", Value: err.Error()},
		Attribute{Key: "exception.stacktrace", Value: string(debug.Stack())},
	)
}
