package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
tracing:
  service_name: "wallet-hub"
  span_timeout: "2m"
  sampling:
    probability: 0.25
    slow_trace_threshold: "750ms"
    evaluation_window: "10s"
    max_buffered_spans: 5000
  export:
    flush_interval: "2s"
    batch_size: 256
    backends:
      - name: "jaeger"
        transport: "grpc"
        endpoint: "localhost:4317"
        insecure: true
      - name: "vendor"
        transport: "http"
        endpoint: "https://collector.example.com/v1/traces"
        headers:
          x-api-key: "test-key-123"

telemetry:
  logging:
    level: "debug"
    format: "text"
  status:
    listen_address: "127.0.0.1:9465"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tracing.ServiceName != "wallet-hub" {
		t.Errorf("expected service name %q, got %q", "wallet-hub", cfg.Tracing.ServiceName)
	}
	if cfg.Tracing.SpanTimeout != 2*time.Minute {
		t.Errorf("expected span timeout %v, got %v", 2*time.Minute, cfg.Tracing.SpanTimeout)
	}
	if cfg.Tracing.Sampling.Probability != 0.25 {
		t.Errorf("expected probability 0.25, got %v", cfg.Tracing.Sampling.Probability)
	}
	if cfg.Tracing.Sampling.SlowTraceThreshold != 750*time.Millisecond {
		t.Errorf("expected slow trace threshold %v, got %v", 750*time.Millisecond, cfg.Tracing.Sampling.SlowTraceThreshold)
	}
	if cfg.Tracing.Export.BatchSize != 256 {
		t.Errorf("expected batch size 256, got %d", cfg.Tracing.Export.BatchSize)
	}

	if len(cfg.Tracing.Export.Backends) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(cfg.Tracing.Export.Backends))
	}
	vendor := cfg.Tracing.Export.Backends[1]
	if vendor.Transport != "http" {
		t.Errorf("expected http transport, got %q", vendor.Transport)
	}
	if vendor.Headers["x-api-key"] != "test-key-123" {
		t.Errorf("expected header %q, got %q", "test-key-123", vendor.Headers["x-api-key"])
	}

	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("expected logging format %q, got %q", "text", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "no such file or directory") {
		t.Errorf("expected file not found error, got: %v", err)
	}
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("tracing: [not a mapping"))
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestParseConfig_DefaultsApplied(t *testing.T) {
	cfg, err := ParseConfig([]byte("tracing:\n  service_name: wallet-hub\n"))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if cfg.Tracing.Sampling.Probability != DefaultSamplingProbability {
		t.Errorf("expected default probability %v, got %v", DefaultSamplingProbability, cfg.Tracing.Sampling.Probability)
	}
	if cfg.Tracing.Sampling.MaxBufferedSpans != DefaultMaxBufferedSpans {
		t.Errorf("expected default max buffered spans %d, got %d", DefaultMaxBufferedSpans, cfg.Tracing.Sampling.MaxBufferedSpans)
	}
	if cfg.Tracing.Export.QueueCapacity != DefaultQueueCapacity {
		t.Errorf("expected default queue capacity %d, got %d", DefaultQueueCapacity, cfg.Tracing.Export.QueueCapacity)
	}
	if cfg.Telemetry.Logging.Level != DefaultLogLevel {
		t.Errorf("expected default log level %q, got %q", DefaultLogLevel, cfg.Telemetry.Logging.Level)
	}
}

func TestParseConfig_ExplicitZeroProbability(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
tracing:
  sampling:
    probability: 0
`))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	// Probability 0 disables head sampling and must survive loading
	// rather than being rewritten to the default.
	if cfg.Tracing.Sampling.Probability != 0 {
		t.Errorf("expected probability 0 preserved, got %v", cfg.Tracing.Sampling.Probability)
	}
}

func TestParseConfig_FlagsDefaultOn(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
tracing:
  flags:
    persistence: false
`))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if cfg.Tracing.Flags.Persistence {
		t.Error("expected persistence flag disabled")
	}
	// Flags omitted from the file stay enabled.
	if !cfg.Tracing.Flags.Messaging {
		t.Error("expected messaging flag enabled by default")
	}
	if !cfg.Tracing.Flags.UseCase {
		t.Error("expected use_case flag enabled by default")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
tracing:
  service_name: "wallet-hub"
  sampling:
    probability: 0.10
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("TRACEHUB_SERVICE_NAME", "wallet-hub-staging")
	t.Setenv("TRACEHUB_SAMPLING_PROBABILITY", "0.5")
	t.Setenv("TRACEHUB_FLAGS_PERSISTENCE", "false")
	t.Setenv("TRACEHUB_EXPORT_BATCH_SIZE", "64")
	t.Setenv("TRACEHUB_LOG_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tracing.ServiceName != "wallet-hub-staging" {
		t.Errorf("expected env service name, got %q", cfg.Tracing.ServiceName)
	}
	if cfg.Tracing.Sampling.Probability != 0.5 {
		t.Errorf("expected env probability 0.5, got %v", cfg.Tracing.Sampling.Probability)
	}
	if cfg.Tracing.Flags.Persistence {
		t.Error("expected persistence flag disabled via env")
	}
	if cfg.Tracing.Export.BatchSize != 64 {
		t.Errorf("expected env batch size 64, got %d", cfg.Tracing.Export.BatchSize)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected env log level %q, got %q", "warn", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_MalformedValueRejected(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("tracing:\n  service_name: wallet-hub\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("TRACEHUB_SAMPLING_PROBABILITY", "abc")
	t.Setenv("TRACEHUB_EXPORT_FLUSH_INTERVAL", "soon")

	_, err := LoadConfigWithEnvOverrides(configPath)
	if err == nil {
		t.Fatal("expected error for unparseable environment values")
	}
	if !strings.Contains(err.Error(), "env.TRACEHUB_SAMPLING_PROBABILITY") {
		t.Errorf("expected probability env error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "env.TRACEHUB_EXPORT_FLUSH_INTERVAL") {
		t.Errorf("expected flush interval env error, got: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValueRejected(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("tracing:\n  service_name: wallet-hub\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("TRACEHUB_SAMPLING_PROBABILITY", "1.5")

	_, err := LoadConfigWithEnvOverrides(configPath)
	if err == nil {
		t.Fatal("expected validation error for out-of-range probability")
	}
	if !strings.Contains(err.Error(), "tracing.sampling.probability") {
		t.Errorf("expected probability field error, got: %v", err)
	}
}
