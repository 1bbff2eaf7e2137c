// Package export ships sampled spans to OTLP backends without ever
// touching the business path.
//
// The exporter queues incoming spans, batches them, and flushes on an
// interval or a size threshold. Every backend has its own circuit
// breaker; when the primary's breaker opens after repeated failures,
// batches fail over to the next configured backend until a half-open
// probe against the primary succeeds. Failover is a re-route, not a
// broadcast. When every breaker is open the batch is dropped with a
// warning, because instrumented call sites must never block on or fail
// from telemetry delivery.
//
// Two transports are supported, OTLP/gRPC and OTLP/HTTP with protobuf
// payloads.
package export
