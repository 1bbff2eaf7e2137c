// Package metrics exposes Prometheus metrics for the tracing core: span
// lifecycle counts, sampling verdicts and buffer pressure, export
// delivery and circuit-breaker positions, and feature-flag state.
//
// The Collector implements the observer interfaces of the trace,
// sampling, and export packages, so a single instance plugs into every
// component during wiring. All metrics live in one registry; mount it
// with promhttp to serve /metrics.
package metrics
