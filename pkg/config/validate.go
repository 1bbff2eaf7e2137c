package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "tracing.sampling.probability").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together; nothing is ever
// silently clamped.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateTracing(&cfg.Tracing)...)
	errs = append(errs, validateSampling(&cfg.Tracing.Sampling)...)
	errs = append(errs, validateSanitizer(&cfg.Tracing.Sanitizer)...)
	errs = append(errs, validateExport(&cfg.Tracing.Export)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// Validate validates the configuration. It is shorthand for Validate(c).
func (c *Config) Validate() error {
	return Validate(c)
}

func validateTracing(t *TracingConfig) []FieldError {
	var errs []FieldError

	if t.ServiceName == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.service_name",
			Message: "must not be empty",
		})
	}
	if t.SpanTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.span_timeout",
			Message: "must be positive",
		})
	}

	return errs
}

func validateSampling(s *SamplingConfig) []FieldError {
	var errs []FieldError

	if s.Probability < 0 || s.Probability > 1 {
		errs = append(errs, FieldError{
			Field:   "tracing.sampling.probability",
			Message: fmt.Sprintf("must be within [0.0, 1.0], got %v", s.Probability),
		})
	}
	if s.SlowTraceThreshold <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sampling.slow_trace_threshold",
			Message: "must be positive",
		})
	}
	if s.EvaluationWindow <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sampling.evaluation_window",
			Message: "must be positive",
		})
	}
	if s.MaxBufferedSpans <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sampling.max_buffered_spans",
			Message: "must be positive",
		})
	}

	return errs
}

func validateSanitizer(s *SanitizerConfig) []FieldError {
	var errs []FieldError

	if s.HashCacheEntries <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sanitizer.hash_cache_entries",
			Message: "must be positive",
		})
	}

	return errs
}

func validateExport(e *ExportConfig) []FieldError {
	var errs []FieldError

	if e.FlushInterval <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.export.flush_interval",
			Message: "must be positive",
		})
	}
	if e.BatchSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.export.batch_size",
			Message: "must be positive",
		})
	}
	if e.QueueCapacity <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.export.queue_capacity",
			Message: "must be positive",
		})
	}
	if e.Breaker.FailureThreshold <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.export.breaker.failure_threshold",
			Message: "must be positive",
		})
	}
	if e.Breaker.ProbeInterval <= 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.export.breaker.probe_interval",
			Message: "must be positive",
		})
	}

	seen := make(map[string]bool, len(e.Backends))
	for i, b := range e.Backends {
		field := fmt.Sprintf("tracing.export.backends[%d]", i)

		if b.Name == "" {
			errs = append(errs, FieldError{
				Field:   field + ".name",
				Message: "must not be empty",
			})
		} else if seen[b.Name] {
			errs = append(errs, FieldError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate backend name %q", b.Name),
			})
		}
		seen[b.Name] = true

		switch b.Transport {
		case "grpc":
			if _, _, err := net.SplitHostPort(b.Endpoint); err != nil {
				errs = append(errs, FieldError{
					Field:   field + ".endpoint",
					Message: fmt.Sprintf("grpc endpoint must be host:port, got %q", b.Endpoint),
				})
			}
		case "http":
			u, err := url.Parse(b.Endpoint)
			if err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{
					Field:   field + ".endpoint",
					Message: fmt.Sprintf("http endpoint must be an absolute URL, got %q", b.Endpoint),
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   field + ".transport",
				Message: fmt.Sprintf("must be \"grpc\" or \"http\", got %q", b.Transport),
			})
		}
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error, got %q", t.Logging.Level),
		})
	}
	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be \"json\" or \"text\", got %q", t.Logging.Format),
		})
	}

	if t.Status.Enabled {
		if _, _, err := net.SplitHostPort(t.Status.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.status.listen_address",
				Message: fmt.Sprintf("must be host:port, got %q", t.Status.ListenAddress),
			})
		}
	}

	return errs
}
