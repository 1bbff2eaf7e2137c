package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := NewDefault()
	cfg.Tracing.Export.Backends = []BackendConfig{
		{Name: "jaeger", Transport: "grpc", Endpoint: "localhost:4317", Insecure: true},
	}
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "empty service name",
			mutate: func(c *Config) { c.Tracing.ServiceName = "" },
			field:  "tracing.service_name",
		},
		{
			name:   "zero span timeout",
			mutate: func(c *Config) { c.Tracing.SpanTimeout = 0 },
			field:  "tracing.span_timeout",
		},
		{
			name:   "probability above one",
			mutate: func(c *Config) { c.Tracing.Sampling.Probability = 1.5 },
			field:  "tracing.sampling.probability",
		},
		{
			name:   "negative probability",
			mutate: func(c *Config) { c.Tracing.Sampling.Probability = -0.1 },
			field:  "tracing.sampling.probability",
		},
		{
			name:   "zero evaluation window",
			mutate: func(c *Config) { c.Tracing.Sampling.EvaluationWindow = 0 },
			field:  "tracing.sampling.evaluation_window",
		},
		{
			name:   "zero buffered spans",
			mutate: func(c *Config) { c.Tracing.Sampling.MaxBufferedSpans = 0 },
			field:  "tracing.sampling.max_buffered_spans",
		},
		{
			name:   "zero hash cache entries",
			mutate: func(c *Config) { c.Tracing.Sanitizer.HashCacheEntries = 0 },
			field:  "tracing.sanitizer.hash_cache_entries",
		},
		{
			name:   "zero batch size",
			mutate: func(c *Config) { c.Tracing.Export.BatchSize = 0 },
			field:  "tracing.export.batch_size",
		},
		{
			name:   "zero failure threshold",
			mutate: func(c *Config) { c.Tracing.Export.Breaker.FailureThreshold = 0 },
			field:  "tracing.export.breaker.failure_threshold",
		},
		{
			name:   "backend without name",
			mutate: func(c *Config) { c.Tracing.Export.Backends[0].Name = "" },
			field:  "tracing.export.backends[0].name",
		},
		{
			name: "duplicate backend name",
			mutate: func(c *Config) {
				c.Tracing.Export.Backends = append(c.Tracing.Export.Backends,
					BackendConfig{Name: "jaeger", Transport: "grpc", Endpoint: "localhost:4318"})
			},
			field: "tracing.export.backends[1].name",
		},
		{
			name:   "bad grpc endpoint",
			mutate: func(c *Config) { c.Tracing.Export.Backends[0].Endpoint = "not a hostport" },
			field:  "tracing.export.backends[0].endpoint",
		},
		{
			name: "bad http endpoint",
			mutate: func(c *Config) {
				c.Tracing.Export.Backends[0].Transport = "http"
				c.Tracing.Export.Backends[0].Endpoint = "collector.example.com"
			},
			field: "tracing.export.backends[0].endpoint",
		},
		{
			name:   "unknown transport",
			mutate: func(c *Config) { c.Tracing.Export.Backends[0].Transport = "udp" },
			field:  "tracing.export.backends[0].transport",
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			field:  "telemetry.logging.level",
		},
		{
			name:   "unknown log format",
			mutate: func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			field:  "telemetry.logging.format",
		},
		{
			name:   "bad status listen address",
			mutate: func(c *Config) { c.Telemetry.Status.ListenAddress = "no-port" },
			field:  "telemetry.status.listen_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}

			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.ServiceName = ""
	cfg.Tracing.Sampling.Probability = 2.0
	cfg.Tracing.Export.BatchSize = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) < 3 {
		t.Errorf("expected at least 3 errors, got %d: %v", len(verr.Errors), err)
	}
	if !strings.Contains(err.Error(), "errors") {
		t.Errorf("expected multi-error message, got: %v", err)
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "tracing.service_name", Message: "must not be empty"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "tracing.service_name: must not be empty") {
		t.Errorf("unexpected message: %s", msg)
	}
}
