// Package propagation carries trace identity across process, broker, and
// goroutine boundaries.
//
// On the wire the identity is a W3C Trace Context 1.0 traceparent token
// plus an opaque tracestate string, written into transport headers, into
// CloudEvents extension attributes, or into Kafka message headers. The
// Propagator's Extract never fails hard: a missing or malformed token
// simply means the next span starts a new root trace, with a warning
// logged for the malformed case.
//
// Broker hops also carry a sendtimestamp extension so the consumer side
// can attach the observed consumer lag to its span.
//
// Inside the process, Capture and Restore move identity across goroutine
// and worker-pool hand-offs as a small immutable Snapshot, keeping parent
// resolution explicit at every asynchronous boundary.
package propagation
