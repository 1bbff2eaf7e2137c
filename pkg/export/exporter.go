package export

import (
	"context"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"bloco-hq/tracehub/pkg/config"
	"bloco-hq/tracehub/pkg/trace"
)

// Observer is notified of export outcomes, for metrics.
type Observer interface {
	SpansExported(backend string, count int, elapsed time.Duration)
	SpansDropped(count int)
	BreakerState(backend string, state BreakerState)
}

// BackendStatus is a point-in-time view of one backend, for the status
// endpoint.
type BackendStatus struct {
	Name                string
	State               BreakerState
	ConsecutiveFailures int
}

type backend struct {
	cfg       config.BackendConfig
	transport transport
	breaker   *breaker
}

type backendSet struct {
	backends []*backend
	export   config.ExportConfig
}

// Exporter ships sampled spans to the configured backends in batches.
//
// Spans arrive through Consume, which only appends to a bounded queue and
// never blocks the caller; a dedicated loop drains the queue and flushes
// on an interval or when a batch fills, whichever comes first. Each
// backend sits behind its own circuit breaker; a batch goes to the first
// backend whose breaker admits it, so an open primary fails over to the
// fallback instead of broadcasting. Export failures are logged and
// counted, never propagated.
type Exporter struct {
	store    *config.Store
	logger   *slog.Logger
	observer Observer

	set   atomic.Pointer[backendSet]
	queue chan []*trace.Span

	serviceName string
}

// NewExporter builds the backend transports from the current
// configuration and subscribes to refreshes: a configuration swap that
// changes the backend topology rebuilds the transports on the fly.
func NewExporter(store *config.Store, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := store.Snapshot().Tracing

	set, err := buildBackendSet(cfg.Export)
	if err != nil {
		return nil, err
	}

	e := &Exporter{
		store:       store,
		logger:      logger,
		queue:       make(chan []*trace.Span, cfg.Export.QueueCapacity),
		serviceName: cfg.ServiceName,
	}
	e.set.Store(set)

	store.OnSwap(func(c *config.Config) {
		e.reconfigure(c.Tracing.Export)
	})
	return e, nil
}

func buildBackendSet(cfg config.ExportConfig) (*backendSet, error) {
	set := &backendSet{export: cfg}
	for _, bc := range cfg.Backends {
		tr, err := newTransport(bc)
		if err != nil {
			for _, b := range set.backends {
				b.transport.close()
			}
			return nil, err
		}
		set.backends = append(set.backends, &backend{
			cfg:       bc,
			transport: tr,
			breaker:   newBreaker(cfg.Breaker),
		})
	}
	return set, nil
}

// reconfigure swaps in a new backend set when the export topology
// changed. Breaker state does not survive the swap; the new backends
// start closed.
func (e *Exporter) reconfigure(cfg config.ExportConfig) {
	old := e.set.Load()
	if reflect.DeepEqual(old.export.Backends, cfg.Backends) && old.export.Breaker == cfg.Breaker {
		current := *old
		current.export = cfg
		e.set.Store(&current)
		return
	}

	set, err := buildBackendSet(cfg)
	if err != nil {
		e.logger.Error("keeping previous export backends, rebuild failed",
			slog.String("error", err.Error()))
		return
	}
	e.set.Store(set)
	for _, b := range old.backends {
		b.transport.close()
	}
	e.logger.Info("export backends reconfigured",
		slog.Int("backends", len(set.backends)))
}

// SetObserver registers the export observer. Must be called during
// wiring, before the run loop starts.
func (e *Exporter) SetObserver(o Observer) {
	e.observer = o
}

// Consume implements the sampling sink. It never blocks: when the queue
// is full the spans are dropped with a warning.
func (e *Exporter) Consume(spans []*trace.Span) {
	if len(spans) == 0 {
		return
	}
	select {
	case e.queue <- spans:
	default:
		e.logger.Warn("export queue full, dropping spans",
			slog.Int("spans", len(spans)))
		if e.observer != nil {
			e.observer.SpansDropped(len(spans))
		}
	}
}

// Run drives the batching loop until ctx is cancelled, then drains the
// queue, flushes the final batch, and closes the transports.
func (e *Exporter) Run(ctx context.Context) {
	cfg := e.set.Load().export
	ticker := time.NewTicker(cfg.FlushInterval)
	defer ticker.Stop()

	var batch []*trace.Span
	for {
		select {
		case <-ctx.Done():
			batch = append(batch, e.drain()...)
			e.flush(batch)
			e.closeTransports()
			return
		case spans := <-e.queue:
			batch = append(batch, spans...)
			if len(batch) >= e.set.Load().export.BatchSize {
				e.flush(batch)
				batch = nil
			}
		case <-ticker.C:
			e.flush(batch)
			batch = nil
			if next := e.set.Load().export.FlushInterval; next != cfg.FlushInterval {
				cfg.FlushInterval = next
				ticker.Reset(next)
			}
		}
	}
}

func (e *Exporter) drain() []*trace.Span {
	var out []*trace.Span
	for {
		select {
		case spans := <-e.queue:
			out = append(out, spans...)
		default:
			return out
		}
	}
}

func (e *Exporter) closeTransports() {
	for _, b := range e.set.Load().backends {
		if err := b.transport.close(); err != nil {
			e.logger.Warn("closing export transport",
				slog.String("backend", b.cfg.Name),
				slog.String("error", err.Error()))
		}
	}
}

// flush ships a batch to the first backend whose breaker admits it. A
// batch that no backend accepts is dropped; losing telemetry is
// preferable to blocking or failing the business path.
func (e *Exporter) flush(batch []*trace.Span) {
	if len(batch) == 0 {
		return
	}
	set := e.set.Load()
	rs := toResourceSpans(e.serviceName, batch)

	for _, b := range set.backends {
		if !b.breaker.Allow() {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), set.export.Timeout)
		start := now()
		err := b.transport.send(ctx, rs)
		elapsed := now().Sub(start)
		cancel()

		if err != nil {
			b.breaker.Failure()
			e.notifyBreaker(b)
			e.logger.Warn("export failed",
				slog.String("backend", b.cfg.Name),
				slog.String("breaker", b.breaker.State().String()),
				slog.Int("spans", len(batch)),
				slog.String("error", err.Error()))
			continue
		}

		b.breaker.Success()
		e.notifyBreaker(b)
		if e.observer != nil {
			e.observer.SpansExported(b.cfg.Name, len(batch), elapsed)
		}
		return
	}

	e.logger.Warn("all export backends unavailable, dropping batch",
		slog.Int("spans", len(batch)))
	if e.observer != nil {
		e.observer.SpansDropped(len(batch))
	}
}

func (e *Exporter) notifyBreaker(b *backend) {
	if e.observer != nil {
		e.observer.BreakerState(b.cfg.Name, b.breaker.State())
	}
}

// Backends reports the current per-backend breaker state.
func (e *Exporter) Backends() []BackendStatus {
	set := e.set.Load()
	out := make([]BackendStatus, 0, len(set.backends))
	for _, b := range set.backends {
		out = append(out, BackendStatus{
			Name:                b.cfg.Name,
			State:               b.breaker.State(),
			ConsecutiveFailures: b.breaker.Failures(),
		})
	}
	return out
}

// QueueDepth reports how many pending batches sit in the queue, with its
// capacity.
func (e *Exporter) QueueDepth() (depth, capacity int) {
	return len(e.queue), cap(e.queue)
}
