package config

import "time"

// Config is the root configuration structure for the tracing core.
// It contains all tunables consumed by the span lifecycle manager, the
// sampling decision engine, the resilient exporter, the identifier
// sanitizer, and the telemetry surface the core exposes about itself.
type Config struct {
	// Tracing contains the tracing core configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Telemetry contains configuration for the observability the core
	// exposes about itself (Prometheus metrics and the status endpoint).
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TracingConfig contains configuration for span creation, sampling,
// sanitization, and export.
type TracingConfig struct {
	// ServiceName identifies the instrumented service on exported spans
	// (resource attribute service.name).
	// Default: "wallet-hub"
	ServiceName string `yaml:"service_name"`

	// SpanTimeout is how long a started span may stay open without an
	// explicit end before the watchdog force-closes it with an error
	// status. Default: 5m
	SpanTimeout time.Duration `yaml:"span_timeout"`

	// Sampling contains head and tail sampling configuration.
	Sampling SamplingConfig `yaml:"sampling"`

	// Flags contains the per-component feature flags gating span creation.
	Flags FlagsConfig `yaml:"flags"`

	// Sanitizer contains attribute-key classification lists.
	Sanitizer SanitizerConfig `yaml:"sanitizer"`

	// Export contains batching, backend, and circuit-breaker configuration.
	Export ExportConfig `yaml:"export"`
}

// SamplingConfig contains configuration for the sampling decision engine.
type SamplingConfig struct {
	// Probability is the head sampling probability applied to traces that
	// match no always-sample rule. Must be within [0.0, 1.0].
	// Default: 0.10
	Probability float64 `yaml:"probability"`

	// SlowTraceThreshold is the total trace duration above which a trace
	// is always sampled. Default: 500ms
	SlowTraceThreshold time.Duration `yaml:"slow_trace_threshold"`

	// EvaluationWindow is how long completed spans are buffered before the
	// keep/drop verdict for their trace is committed. Default: 5s
	EvaluationWindow time.Duration `yaml:"evaluation_window"`

	// MaxBufferedSpans bounds the tail-sampling buffer. When the buffer is
	// full the oldest buffered trace is evicted and dropped.
	// Default: 10000
	MaxBufferedSpans int `yaml:"max_buffered_spans"`

	// CriticalEvents is the enumeration of business event tags that force
	// a trace to be sampled regardless of probability.
	// Default: WALLET_CREATED, WALLET_CLOSED, LARGE_TRANSFER,
	// TRANSACTION_FAILED, SAGA_COMPENSATION
	CriticalEvents []string `yaml:"critical_events"`
}

// FlagsConfig contains the runtime-togglable feature flags, one per
// instrumented component class. A disabled class produces no-op spans.
// All flags default to true.
type FlagsConfig struct {
	// Persistence gates spans around repository/database calls.
	Persistence bool `yaml:"persistence"`

	// Messaging gates spans around broker produce/consume operations.
	Messaging bool `yaml:"messaging"`

	// StateMachine gates spans around saga state-machine transition events.
	StateMachine bool `yaml:"state_machine"`

	// ExternalCall gates spans around outbound HTTP calls.
	ExternalCall bool `yaml:"external_call"`

	// ReactivePipeline gates spans around reactive operator chains.
	ReactivePipeline bool `yaml:"reactive_pipeline"`

	// UseCase gates the root spans around business use-case execution.
	UseCase bool `yaml:"use_case"`
}

// SanitizerConfig contains the attribute-key classification lists consumed
// by the identifier sanitizer. Keys are matched after normalization to
// lowercase dot-separated form. A key present in none of the lists is
// redacted entirely (fail closed).
type SanitizerConfig struct {
	// AllowKeys pass through unchanged (technical correlation identifiers).
	AllowKeys []string `yaml:"allow_keys"`

	// HashKeys are replaced by a deterministic 16-character digest so
	// correlation survives without exposing the raw value.
	HashKeys []string `yaml:"hash_keys"`

	// RedactKeys are replaced entirely by the redaction marker.
	RedactKeys []string `yaml:"redact_keys"`

	// HashCacheEntries bounds the digest memoization cache.
	// Default: 4096
	HashCacheEntries int64 `yaml:"hash_cache_entries"`
}

// ExportConfig contains configuration for the resilient exporter.
type ExportConfig struct {
	// FlushInterval is the period of the batching loop. Default: 5s
	FlushInterval time.Duration `yaml:"flush_interval"`

	// BatchSize triggers an early flush when the pending batch reaches this
	// many spans. Default: 512
	BatchSize int `yaml:"batch_size"`

	// QueueCapacity bounds the queue between the sampling engine and the
	// export loop. A full queue drops spans rather than blocking callers.
	// Default: 2048
	QueueCapacity int `yaml:"queue_capacity"`

	// Timeout is the per-request export timeout. Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Breaker contains the per-backend circuit-breaker configuration.
	Breaker BreakerConfig `yaml:"breaker"`

	// Backends is the ordered list of tracing backends. The first entry is
	// the primary; later entries are failover targets.
	Backends []BackendConfig `yaml:"backends"`
}

// BreakerConfig contains circuit-breaker tunables shared by all backends.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive export failures that
	// opens the breaker. Default: 5
	FailureThreshold int `yaml:"failure_threshold"`

	// ProbeInterval is how long an open breaker waits before allowing a
	// single half-open probe. Default: 30s
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

// BackendConfig describes one tracing backend endpoint.
type BackendConfig struct {
	// Name identifies the backend in metrics, logs, and the status surface.
	Name string `yaml:"name"`

	// Transport selects the OTLP transport: "grpc" or "http".
	// Default: "grpc"
	Transport string `yaml:"transport"`

	// Endpoint is the backend address. host:port for grpc, a base URL for
	// http (the exporter appends /v1/traces).
	Endpoint string `yaml:"endpoint"`

	// Headers are added to every export request (e.g. tenant tokens).
	Headers map[string]string `yaml:"headers"`

	// Insecure disables TLS for the grpc transport.
	Insecure bool `yaml:"insecure"`
}

// TelemetryConfig contains configuration for the core's own observability.
type TelemetryConfig struct {
	// Logging contains log output configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Status contains the status/health endpoint configuration.
	Status StatusConfig `yaml:"status"`
}

// LoggingConfig contains log output configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the log encoding: "json" or "text". Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the core registers its Prometheus metrics.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace. Default: "tracehub"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem. Default: "tracing"
	Subsystem string `yaml:"subsystem"`
}

// StatusConfig contains the status endpoint configuration.
type StatusConfig struct {
	// Enabled controls whether the status HTTP endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the status endpoint.
	// Default: "127.0.0.1:9465"
	ListenAddress string `yaml:"listen_address"`
}
