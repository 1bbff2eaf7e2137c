// Package telemetry makes the tracing core observable from the outside.
//
// # Components
//
//   - metrics: Prometheus metrics for span lifecycle, sampling verdicts,
//     export delivery, and feature-flag state
//   - health: liveness, readiness, and a tracing status endpoint
//     reporting backend connectivity, breaker positions, buffer
//     occupancy, and span counts
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer.SetObserver(collector)
//
//	checker := health.NewChecker(engine, exporter, tally)
//	server := health.NewServer(cfg.Telemetry.Status, checker, collector.Registry(), logger)
//	go server.Run(ctx)
//
// Both surfaces are consumed by external monitoring; nothing here feeds
// back into sampling or export decisions.
package telemetry
