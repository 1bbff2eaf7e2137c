package config

import "time"

// Default values for configuration fields.
const (
	// Tracing defaults
	DefaultServiceName = "wallet-hub"
	DefaultSpanTimeout = 5 * time.Minute

	// Sampling defaults
	DefaultSamplingProbability = 0.10
	DefaultSlowTraceThreshold  = 500 * time.Millisecond
	DefaultEvaluationWindow    = 5 * time.Second
	DefaultMaxBufferedSpans    = 10000

	// Sanitizer defaults
	DefaultHashCacheEntries = 4096

	// Export defaults
	DefaultFlushInterval    = 5 * time.Second
	DefaultBatchSize        = 512
	DefaultQueueCapacity    = 2048
	DefaultExportTimeout    = 10 * time.Second
	DefaultFailureThreshold = 5
	DefaultProbeInterval    = 30 * time.Second
	DefaultBackendTransport = "grpc"

	// Telemetry defaults
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "json"
	DefaultMetricsEnabled      = true
	DefaultMetricsNamespace    = "tracehub"
	DefaultMetricsSubsystem    = "tracing"
	DefaultStatusEnabled       = true
	DefaultStatusListenAddress = "127.0.0.1:9465"
)

// DefaultCriticalEvents is the default enumeration of business event tags
// that force a trace to be sampled.
var DefaultCriticalEvents = []string{
	"WALLET_CREATED",
	"WALLET_CLOSED",
	"LARGE_TRANSFER",
	"TRANSACTION_FAILED",
	"SAGA_COMPENSATION",
}

// DefaultAllowKeys is the default allow-list: technical correlation
// identifiers that are safe to attach to spans verbatim.
var DefaultAllowKeys = []string{
	"transaction.id",
	"saga.id",
	"event.id",
	"event.type",
	"span.kind",
	"operation",
	"component",
	"messaging.topic",
	"messaging.partition",
	"messaging.offset",
	"messaging.operation",
	"messaging.consumer_lag_ms",
	"db.system",
	"db.operation",
	"db.statement",
	"http.method",
	"http.status_code",
	"http.url",
	"error.type",
	"error.message",
	"exception.type",
	"exception.message",
	"exception.stacktrace",
	"state.from",
	"state.to",
	"amount",
	"status",
}

// DefaultHashKeys is the default hash-list: owner-identifying values that
// must stay correlatable but never readable.
var DefaultHashKeys = []string{
	"wallet.id",
	"user.id",
	"customer.name",
	"email",
}

// DefaultRedactKeys is the default redact-list: values that carry no
// correlation worth preserving.
var DefaultRedactKeys = []string{
	"password",
	"token",
	"secret",
	"api.key",
	"authorization",
}

// ApplyDefaults fills in default values for any configuration fields that
// are zero-valued. It modifies the configuration in place.
//
// Sampling.Probability is deliberately excluded: 0 is a valid setting
// (head-sample nothing), so ParseConfig and NewDefault seed it up front
// instead of inferring it from the zero value here.
func ApplyDefaults(cfg *Config) {
	t := &cfg.Tracing
	if t.ServiceName == "" {
		t.ServiceName = DefaultServiceName
	}
	if t.SpanTimeout == 0 {
		t.SpanTimeout = DefaultSpanTimeout
	}

	s := &t.Sampling
	if s.SlowTraceThreshold == 0 {
		s.SlowTraceThreshold = DefaultSlowTraceThreshold
	}
	if s.EvaluationWindow == 0 {
		s.EvaluationWindow = DefaultEvaluationWindow
	}
	if s.MaxBufferedSpans == 0 {
		s.MaxBufferedSpans = DefaultMaxBufferedSpans
	}
	if s.CriticalEvents == nil {
		s.CriticalEvents = append([]string(nil), DefaultCriticalEvents...)
	}

	san := &t.Sanitizer
	if san.AllowKeys == nil {
		san.AllowKeys = append([]string(nil), DefaultAllowKeys...)
	}
	if san.HashKeys == nil {
		san.HashKeys = append([]string(nil), DefaultHashKeys...)
	}
	if san.RedactKeys == nil {
		san.RedactKeys = append([]string(nil), DefaultRedactKeys...)
	}
	if san.HashCacheEntries == 0 {
		san.HashCacheEntries = DefaultHashCacheEntries
	}

	e := &t.Export
	if e.FlushInterval == 0 {
		e.FlushInterval = DefaultFlushInterval
	}
	if e.BatchSize == 0 {
		e.BatchSize = DefaultBatchSize
	}
	if e.QueueCapacity == 0 {
		e.QueueCapacity = DefaultQueueCapacity
	}
	if e.Timeout == 0 {
		e.Timeout = DefaultExportTimeout
	}
	if e.Breaker.FailureThreshold == 0 {
		e.Breaker.FailureThreshold = DefaultFailureThreshold
	}
	if e.Breaker.ProbeInterval == 0 {
		e.Breaker.ProbeInterval = DefaultProbeInterval
	}
	for i := range e.Backends {
		if e.Backends[i].Transport == "" {
			e.Backends[i].Transport = DefaultBackendTransport
		}
	}

	lg := &cfg.Telemetry.Logging
	if lg.Level == "" {
		lg.Level = DefaultLogLevel
	}
	if lg.Format == "" {
		lg.Format = DefaultLogFormat
	}

	m := &cfg.Telemetry.Metrics
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
	if m.Subsystem == "" {
		m.Subsystem = DefaultMetricsSubsystem
	}

	st := &cfg.Telemetry.Status
	if st.ListenAddress == "" {
		st.ListenAddress = DefaultStatusListenAddress
	}
}

// NewDefault returns a configuration populated entirely with defaults.
// Flags default to enabled for every component class.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Tracing.Flags = FlagsConfig{
		Persistence:      true,
		Messaging:        true,
		StateMachine:     true,
		ExternalCall:     true,
		ReactivePipeline: true,
		UseCase:          true,
	}
	cfg.Tracing.Sampling.Probability = DefaultSamplingProbability
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Status.Enabled = DefaultStatusEnabled
	ApplyDefaults(cfg)
	return cfg
}
