package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bloco-hq/tracehub/pkg/config"
	"bloco-hq/tracehub/pkg/export"
	"bloco-hq/tracehub/pkg/propagation"
	"bloco-hq/tracehub/pkg/sampling"
	"bloco-hq/tracehub/pkg/sanitize"
	"bloco-hq/tracehub/pkg/telemetry/health"
	"bloco-hq/tracehub/pkg/telemetry/metrics"
	"bloco-hq/tracehub/pkg/trace"
)

// statusPollInterval is how often gauges derived from polled state
// (buffer occupancy) are refreshed.
const statusPollInterval = 5 * time.Second

// Pipeline is the composition root of the tracing core. It owns the
// span flow end to end: tracer -> sampling engine -> exporter, with the
// sanitizer in front of every attribute, the propagator at the borders,
// and the metrics and status surfaces observing each stage.
type Pipeline struct {
	store      *config.Store
	logger     *slog.Logger
	tracer     *trace.Tracer
	propagator *propagation.Propagator
	engine     *sampling.Engine
	exporter   *export.Exporter
	collector  *metrics.Collector
	checker    *health.Checker
	server     *health.Server
}

// New wires the tracing core from the configuration in store.
func New(store *config.Store, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := store.Snapshot()

	sanitizer, err := sanitize.New(store, logger)
	if err != nil {
		return nil, err
	}

	exporter, err := export.NewExporter(store, logger)
	if err != nil {
		return nil, err
	}

	engine := sampling.NewEngine(store, exporter, logger)
	tracer := trace.NewTracer(store, sanitizer, engine, logger)
	propagator := propagation.NewPropagator(logger)

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	tally := health.NewTally()

	tracer.SetObserver(spanObservers{collector, tally})
	engine.SetObserver(samplingObservers{collector, tally})
	exporter.SetObserver(exportObservers{collector, tally})

	collector.UpdateFlags(tracer.Gate())
	store.OnSwap(func(*config.Config) {
		collector.UpdateFlags(tracer.Gate())
	})

	checker := health.NewChecker(engine, exporter, tally)
	server := health.NewServer(cfg.Telemetry.Status, checker, collector.Registry(), logger)

	return &Pipeline{
		store:      store,
		logger:     logger,
		tracer:     tracer,
		propagator: propagator,
		engine:     engine,
		exporter:   exporter,
		collector:  collector,
		checker:    checker,
		server:     server,
	}, nil
}

// Tracer returns the span lifecycle manager.
func (p *Pipeline) Tracer() *trace.Tracer { return p.tracer }

// Propagator returns the context propagator.
func (p *Pipeline) Propagator() *propagation.Propagator { return p.propagator }

// Status returns the current tracing status report.
func (p *Pipeline) Status() health.Status { return p.checker.Check() }

// Run drives every background loop until ctx is cancelled: the span
// timeout watchdog, the sampling evaluation loop, the export batching
// loop, the status server, and the occupancy gauge refresh. On
// cancellation the sampling engine flushes its pending verdicts into the
// exporter before the exporter drains, so a clean shutdown ships
// everything already decided.
func (p *Pipeline) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	// A status server failure stops the whole pipeline.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The exporter must outlive the sampling engine's shutdown flush.
	exportCtx, stopExporter := context.WithCancel(context.Background())

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.exporter.Run(exportCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.engine.Run(ctx)
		stopExporter()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.tracer.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(statusPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.collector.UpdateBufferOccupancy(p.engine.Stats())
			}
		}
	}()

	err := p.server.Run(ctx)
	cancel()
	wg.Wait()
	return err
}
