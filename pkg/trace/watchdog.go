package trace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bloco-hq/tracehub/pkg/config"
)

// now is stubbed in tests.
var now = time.Now

// watchdog tracks active spans and force-closes any span left open beyond
// the configured span timeout, so a cancelled or abandoned operation never
// leaks an open span. The registry lock is held only for map operations;
// force-closing happens outside it.
type watchdog struct {
	tracer *Tracer
	logger *slog.Logger

	mu     sync.Mutex
	active map[SpanID]*Span
}

// minSweepInterval bounds how often the watchdog scans; the scan
// granularity also bounds how late past the timeout a close can happen.
const (
	minSweepInterval = 100 * time.Millisecond
	maxSweepInterval = 30 * time.Second
)

func newWatchdog(t *Tracer, logger *slog.Logger) *watchdog {
	return &watchdog{
		tracer: t,
		logger: logger,
		active: make(map[SpanID]*Span),
	}
}

func (w *watchdog) track(s *Span) {
	w.mu.Lock()
	w.active[s.SpanID] = s
	w.mu.Unlock()
}

func (w *watchdog) forget(s *Span) {
	w.mu.Lock()
	delete(w.active, s.SpanID)
	w.mu.Unlock()
}

// activeCount reports the number of spans currently open.
func (w *watchdog) activeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.active)
}

// run sweeps the registry until ctx is cancelled. The sweep interval
// follows the configured timeout so short timeouts are honored promptly
// without busy-scanning for long ones.
func (w *watchdog) run(ctx context.Context, store *config.Store) {
	for {
		timeout := store.Snapshot().Tracing.SpanTimeout
		interval := timeout / 8
		if interval < minSweepInterval {
			interval = minSweepInterval
		}
		if interval > maxSweepInterval {
			interval = maxSweepInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			w.sweep(timeout)
		}
	}
}

// sweep force-closes every active span older than timeout. A span is never
// closed before its timeout elapses; EndWithStatus guarantees exactly-once
// even when an explicit end races the sweep.
func (w *watchdog) sweep(timeout time.Duration) {
	cutoff := now().Add(-timeout)

	w.mu.Lock()
	var expired []*Span
	for _, s := range w.active {
		if s.Start.Before(cutoff) || s.Start.Equal(cutoff) {
			expired = append(expired, s)
		}
	}
	w.mu.Unlock()

	for _, s := range expired {
		w.logger.Warn("force-closing abandoned span",
			"span_id", s.SpanID.String(),
			"trace_id", s.TraceID.String(),
			"name", s.Name,
			"age", now().Sub(s.Start).String(),
		)
		s.forceClose()
	}
}
