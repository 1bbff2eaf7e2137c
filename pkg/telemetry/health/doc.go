// Package health exposes the tracing core's operational state over HTTP:
// a liveness probe, and a status endpoint reporting per-backend
// connectivity with circuit-breaker positions, span buffer occupancy,
// export queue depth, and running span counts.
//
// The status endpoint is read-only and consumed by external monitoring.
// It answers 503 only when every export backend is down; a degraded
// backend set still serves 200 so orchestrators do not restart a process
// that is merely shipping to its fallback.
package health
