// Tracehub is the distributed-tracing core of the Bloco wallet platform,
// runnable as a standalone sidecar or embedded as a library.
//
// It receives spans from instrumented wallet components, scrubs sensitive
// identifiers, applies tail-based sampling, and ships the survivors to
// OTLP backends behind circuit-breaker-protected failover.
//
// Usage:
//
//	# Start the sidecar with default configuration
//	tracehub run
//
//	# Start with a custom configuration file
//	tracehub run --config /etc/tracehub/config.yaml
//
//	# Validate a configuration file without starting
//	tracehub validate --config /etc/tracehub/config.yaml
//
//	# Show version information
//	tracehub version
package main

func main() {
	Execute()
}
