package trace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"bloco-hq/tracehub/pkg/config"
)

type captureCompleter struct {
	mu    sync.Mutex
	spans []*Span
}

func (c *captureCompleter) OnSpanComplete(s *Span) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spans = append(c.spans, s)
}

func (c *captureCompleter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spans)
}

type captureObserver struct {
	mu      sync.Mutex
	started int
	ended   int
}

func (o *captureObserver) SpanStarted(*Span) {
	o.mu.Lock()
	o.started++
	o.mu.Unlock()
}

func (o *captureObserver) SpanEnded(*Span) {
	o.mu.Lock()
	o.ended++
	o.mu.Unlock()
}

type upperSanitizer struct{}

func (upperSanitizer) Sanitize(key, value string) string {
	return strings.ToUpper(value)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTracer(t *testing.T, mutate func(*config.Config)) (*Tracer, *config.Store, *captureCompleter) {
	t.Helper()
	cfg := config.NewDefault()
	if mutate != nil {
		mutate(cfg)
	}
	store := config.NewStore(cfg)
	completer := &captureCompleter{}
	return NewTracer(store, nil, completer, discardLogger()), store, completer
}

func stubClock(t *testing.T, at time.Time) {
	t.Helper()
	now = func() time.Time { return at }
	t.Cleanup(func() { now = time.Now })
}

func TestTracer_RootAndChildSpans(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)

	ctx, root := tracer.StartSpan(context.Background(), "wallet.transfer", KindServer, ComponentUseCase)
	if root.TraceID.IsZero() || root.SpanID.IsZero() {
		t.Fatal("expected root span to mint ids")
	}
	if !root.ParentID.IsZero() {
		t.Errorf("expected root span without parent, got %s", root.ParentID)
	}

	_, child := tracer.StartSpan(ctx, "transfers.insert", KindClient, ComponentPersistence)
	if child.TraceID != root.TraceID {
		t.Errorf("expected child to join trace %s, got %s", root.TraceID, child.TraceID)
	}
	if child.ParentID != root.SpanID {
		t.Errorf("expected child parent %s, got %s", root.SpanID, child.ParentID)
	}
}

func TestTracer_RemoteParent(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)

	remote := SpanContext{TraceID: NewTraceID(), SpanID: NewSpanID(), Flags: FlagSampled, Remote: true}
	ctx := ContextWithRemote(context.Background(), remote)

	_, span := tracer.StartSpan(ctx, "wallet.events process", KindConsumer, ComponentMessaging)
	if span.TraceID != remote.TraceID {
		t.Errorf("expected span to join remote trace %s, got %s", remote.TraceID, span.TraceID)
	}
	if span.ParentID != remote.SpanID {
		t.Errorf("expected remote parent %s, got %s", remote.SpanID, span.ParentID)
	}
}

func TestTracer_DisabledComponent(t *testing.T) {
	tracer, _, completer := newTestTracer(t, func(cfg *config.Config) {
		cfg.Tracing.Flags.Persistence = false
	})

	ctx := context.Background()
	outCtx, span := tracer.StartSpan(ctx, "transfers.insert", KindClient, ComponentPersistence)

	if !span.IsNoop() {
		t.Fatal("expected noop span for disabled component")
	}
	if outCtx != ctx {
		t.Error("expected context unchanged for noop span")
	}

	span.EndOK()
	if completer.count() != 0 {
		t.Error("noop spans must never reach the completer")
	}
}

func TestTracer_FlagToggleViaStore(t *testing.T) {
	tracer, store, _ := newTestTracer(t, nil)

	_, before := tracer.StartSpan(context.Background(), "transfers.insert", KindClient, ComponentPersistence)
	if before.IsNoop() {
		t.Fatal("expected persistence enabled initially")
	}
	before.EndOK()

	next := config.NewDefault()
	next.Tracing.Flags.Persistence = false
	if err := store.Swap(next); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	_, after := tracer.StartSpan(context.Background(), "transfers.insert", KindClient, ComponentPersistence)
	if !after.IsNoop() {
		t.Error("expected persistence disabled after flag toggle")
	}
}

func TestTracer_CompleterReceivesEndedSpans(t *testing.T) {
	tracer, _, completer := newTestTracer(t, nil)

	_, span := tracer.StartSpan(context.Background(), "wallet.transfer", KindServer, ComponentUseCase)
	span.EndOK()
	span.EndOK()

	if got := completer.count(); got != 1 {
		t.Errorf("expected completer to receive the span exactly once, got %d", got)
	}
}

func TestTracer_Observer(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)
	obs := &captureObserver{}
	tracer.SetObserver(obs)

	_, a := tracer.StartSpan(context.Background(), "a", KindInternal, ComponentUseCase)
	_, b := tracer.StartSpan(context.Background(), "b", KindInternal, ComponentUseCase)
	a.EndOK()
	b.EndError(errors.New("boom"))

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.started != 2 || obs.ended != 2 {
		t.Errorf("expected 2 started and 2 ended, got %d/%d", obs.started, obs.ended)
	}
}

func TestTracer_SanitizerAppliedToAttributes(t *testing.T) {
	cfg := config.NewDefault()
	store := config.NewStore(cfg)
	tracer := NewTracer(store, upperSanitizer{}, &captureCompleter{}, discardLogger())

	_, span := tracer.StartSpan(context.Background(), "wallet.transfer", KindServer, ComponentUseCase)
	span.SetAttribute("status", "completed")

	if got, _ := span.Attribute("status"); got != "COMPLETED" {
		t.Errorf("expected sanitized value, got %q", got)
	}
}

func TestTracer_SampledFlagFollowsProbability(t *testing.T) {
	always, _, _ := newTestTracer(t, func(cfg *config.Config) {
		cfg.Tracing.Sampling.Probability = 1.0
	})
	_, span := always.StartSpan(context.Background(), "a", KindInternal, ComponentUseCase)
	if !span.Context().IsSampled() {
		t.Error("expected sampled flag at probability 1.0")
	}
	span.EndOK()

	never, _, _ := newTestTracer(t, func(cfg *config.Config) {
		cfg.Tracing.Sampling.Probability = 0
	})
	_, span = never.StartSpan(context.Background(), "a", KindInternal, ComponentUseCase)
	if span.Context().IsSampled() {
		t.Error("expected no sampled flag at probability 0")
	}
	span.EndOK()
}

func TestHeadSampled(t *testing.T) {
	id := NewTraceID()

	if !HeadSampled(id, 1.0) {
		t.Error("rate 1.0 must always sample")
	}
	if HeadSampled(id, 0) {
		t.Error("rate 0 must never sample")
	}
	if HeadSampled(id, -0.5) {
		t.Error("negative rate must never sample")
	}

	// The decision is a pure function of the id.
	first := HeadSampled(id, 0.5)
	for i := 0; i < 10; i++ {
		if HeadSampled(id, 0.5) != first {
			t.Fatal("head decision must be deterministic per trace id")
		}
	}
}

func TestHeadSampled_Distribution(t *testing.T) {
	const n = 10000
	kept := 0
	for i := 0; i < n; i++ {
		if HeadSampled(NewTraceID(), 0.5) {
			kept++
		}
	}
	if kept < n*4/10 || kept > n*6/10 {
		t.Errorf("expected roughly half of traces kept at rate 0.5, got %d of %d", kept, n)
	}
}

func TestWithSpan_Error(t *testing.T) {
	tracer, _, completer := newTestTracer(t, nil)

	boom := errors.New("insufficient funds")
	err := WithSpan(context.Background(), tracer, "wallet.transfer", KindServer, ComponentUseCase,
		func(ctx context.Context) error { return boom })

	if !errors.Is(err, boom) {
		t.Fatalf("expected original error returned, got %v", err)
	}
	if completer.count() != 1 {
		t.Fatal("expected span delivered to completer")
	}

	span := completer.spans[0]
	if span.StatusInfo.Code != StatusError {
		t.Errorf("expected error status, got %v", span.StatusInfo.Code)
	}
	events := span.Events()
	if len(events) != 1 || events[0].Name != "exception" {
		t.Fatalf("expected one exception event, got %v", events)
	}
	var msg string
	for _, a := range events[0].Attributes {
		if a.Key == "exception.message" {
			msg = a.Value
		}
	}
	if msg != "insufficient funds" {
		t.Errorf("expected exception message recorded, got %q", msg)
	}
}

func TestWithSpan_Panic(t *testing.T) {
	tracer, _, completer := newTestTracer(t, nil)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = WithSpan(context.Background(), tracer, "wallet.transfer", KindServer, ComponentUseCase,
			func(ctx context.Context) error { panic("saga corrupted") })
	}()

	if completer.count() != 1 {
		t.Fatal("expected span ended despite panic")
	}
	span := completer.spans[0]
	if span.StatusInfo.Code != StatusError {
		t.Errorf("expected error status after panic, got %v", span.StatusInfo.Code)
	}
	if !strings.Contains(span.StatusInfo.Message, "saga corrupted") {
		t.Errorf("expected panic message in status, got %q", span.StatusInfo.Message)
	}
}

func TestWithSpan_OK(t *testing.T) {
	tracer, _, completer := newTestTracer(t, nil)

	err := WithSpan(context.Background(), tracer, "wallet.transfer", KindServer, ComponentUseCase,
		func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completer.spans[0].StatusInfo.Code != StatusOK {
		t.Errorf("expected OK status, got %v", completer.spans[0].StatusInfo.Code)
	}
}

func TestWatchdog_ForceClosesAbandonedSpans(t *testing.T) {
	tracer, _, completer := newTestTracer(t, func(cfg *config.Config) {
		cfg.Tracing.SpanTimeout = time.Minute
	})

	base := time.Now()
	stubClock(t, base.Add(-2*time.Minute))
	_, stale := tracer.StartSpan(context.Background(), "stuck", KindInternal, ComponentUseCase)

	stubClock(t, base)
	_, fresh := tracer.StartSpan(context.Background(), "active", KindInternal, ComponentUseCase)

	tracer.watchdog.sweep(time.Minute)

	if !stale.Ended() {
		t.Fatal("expected stale span force-closed")
	}
	if stale.StatusInfo.Code != StatusError || stale.StatusInfo.Message != "timeout" {
		t.Errorf("expected timeout status, got %+v", stale.StatusInfo)
	}
	if fresh.Ended() {
		t.Error("expected fresh span left open")
	}
	if completer.count() != 1 {
		t.Errorf("expected only the stale span delivered, got %d", completer.count())
	}
	if tracer.watchdog.activeCount() != 1 {
		t.Errorf("expected one span still tracked, got %d", tracer.watchdog.activeCount())
	}
}

func TestWatchdog_RunStopsOnCancel(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tracer.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop on context cancellation")
	}
}
