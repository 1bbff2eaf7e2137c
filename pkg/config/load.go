package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Boolean switches that default to on (feature flags, metrics,
// status endpoint) are seeded before parsing so that omitting them from the
// file leaves them enabled.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes, applies defaults, and
// validates the result.
func ParseConfig(data []byte) (*Config, error) {
	// Seed fields whose zero value is meaningful; yaml only overrides
	// fields that are present, so an omitted field keeps the seed while an
	// explicit false or 0 survives.
	cfg := Config{}
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

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention TRACEHUB_SECTION_FIELD (e.g., TRACEHUB_SAMPLING_PROBABILITY) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if errs := applyEnvOverrides(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", ValidationError{Errors: errs})
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format TRACEHUB_SECTION_FIELD.
// A set variable that fails to parse is reported as a FieldError rather than
// being skipped; nothing is ever silently clamped or ignored.
func applyEnvOverrides(cfg *Config) []FieldError {
	var errs []FieldError

	if val := os.Getenv("TRACEHUB_SERVICE_NAME"); val != "" {
		cfg.Tracing.ServiceName = val
	}
	errs = appendEnvDuration(errs, "TRACEHUB_SPAN_TIMEOUT", &cfg.Tracing.SpanTimeout)

	// Sampling overrides
	errs = appendEnvFloat(errs, "TRACEHUB_SAMPLING_PROBABILITY", &cfg.Tracing.Sampling.Probability)
	errs = appendEnvDuration(errs, "TRACEHUB_SAMPLING_SLOW_TRACE_THRESHOLD", &cfg.Tracing.Sampling.SlowTraceThreshold)
	errs = appendEnvDuration(errs, "TRACEHUB_SAMPLING_EVALUATION_WINDOW", &cfg.Tracing.Sampling.EvaluationWindow)
	errs = appendEnvInt(errs, "TRACEHUB_SAMPLING_MAX_BUFFERED_SPANS", &cfg.Tracing.Sampling.MaxBufferedSpans)

	// Feature flag overrides
	errs = appendEnvBool(errs, "TRACEHUB_FLAGS_PERSISTENCE", &cfg.Tracing.Flags.Persistence)
	errs = appendEnvBool(errs, "TRACEHUB_FLAGS_MESSAGING", &cfg.Tracing.Flags.Messaging)
	errs = appendEnvBool(errs, "TRACEHUB_FLAGS_STATE_MACHINE", &cfg.Tracing.Flags.StateMachine)
	errs = appendEnvBool(errs, "TRACEHUB_FLAGS_EXTERNAL_CALL", &cfg.Tracing.Flags.ExternalCall)
	errs = appendEnvBool(errs, "TRACEHUB_FLAGS_REACTIVE_PIPELINE", &cfg.Tracing.Flags.ReactivePipeline)
	errs = appendEnvBool(errs, "TRACEHUB_FLAGS_USE_CASE", &cfg.Tracing.Flags.UseCase)

	// Export overrides
	errs = appendEnvDuration(errs, "TRACEHUB_EXPORT_FLUSH_INTERVAL", &cfg.Tracing.Export.FlushInterval)
	errs = appendEnvInt(errs, "TRACEHUB_EXPORT_BATCH_SIZE", &cfg.Tracing.Export.BatchSize)
	errs = appendEnvInt(errs, "TRACEHUB_EXPORT_BREAKER_FAILURE_THRESHOLD", &cfg.Tracing.Export.Breaker.FailureThreshold)
	errs = appendEnvDuration(errs, "TRACEHUB_EXPORT_BREAKER_PROBE_INTERVAL", &cfg.Tracing.Export.Breaker.ProbeInterval)

	// Telemetry overrides
	if val := os.Getenv("TRACEHUB_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TRACEHUB_STATUS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Status.ListenAddress = val
	}

	return errs
}

func appendEnvDuration(errs []FieldError, name string, target *time.Duration) []FieldError {
	val := os.Getenv(name)
	if val == "" {
		return errs
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return append(errs, FieldError{Field: "env." + name, Message: fmt.Sprintf("invalid duration %q", val)})
	}
	*target = d
	return errs
}

func appendEnvInt(errs []FieldError, name string, target *int) []FieldError {
	val := os.Getenv(name)
	if val == "" {
		return errs
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return append(errs, FieldError{Field: "env." + name, Message: fmt.Sprintf("invalid integer %q", val)})
	}
	*target = i
	return errs
}

func appendEnvFloat(errs []FieldError, name string, target *float64) []FieldError {
	val := os.Getenv(name)
	if val == "" {
		return errs
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return append(errs, FieldError{Field: "env." + name, Message: fmt.Sprintf("invalid number %q", val)})
	}
	*target = f
	return errs
}

func appendEnvBool(errs []FieldError, name string, target *bool) []FieldError {
	val := os.Getenv(name)
	if val == "" {
		return errs
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return append(errs, FieldError{Field: "env." + name, Message: fmt.Sprintf("invalid boolean %q", val)})
	}
	*target = b
	return errs
}
