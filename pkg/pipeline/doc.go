// Package pipeline wires the tracing core together: configuration store,
// sanitizer, tracer, sampling engine, exporter, propagator, metrics, and
// the status endpoint, in one composition root with a single Run loop.
//
// Applications embedding the tracing core construct a Pipeline, start
// Run in a goroutine, and instrument call sites through Tracer and
// Propagator. Cancelling the run context shuts the stages down in flow
// order so pending sampling verdicts still reach the exporter.
package pipeline
