package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bloco-hq/tracehub/pkg/config"
	"bloco-hq/tracehub/pkg/pipeline"
)

var runFlags struct {
	statusAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tracing sidecar",
	Long: `Start the tracing core with the specified configuration.

The process exposes the status and metrics endpoints on the configured
listen address and keeps watching the configuration file, so sampling
settings, feature flags, sanitizer lists, and export backends can change
without a restart.

Examples:
  # Start with default config
  tracehub run

  # Start with custom config
  tracehub run --config /etc/tracehub/config.yaml

  # Override the status listen address
  tracehub run --status-listen 0.0.0.0:9465

  # Validate config without starting
  tracehub run --dry-run`,
	RunE: runSidecar,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.statusAddress, "status-listen", "", "override status endpoint listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runSidecar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.statusAddress != "" {
		cfg.Telemetry.Status.ListenAddress = runFlags.statusAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	store := config.NewStore(cfg)

	p, err := pipeline.New(store, logger)
	if err != nil {
		return fmt.Errorf("failed to wire tracing pipeline: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep the configuration file under watch for runtime refreshes.
	if _, statErr := os.Stat(cfgFile); statErr == nil {
		watcher, err := config.NewWatcher(cfgFile, store, logger)
		if err != nil {
			slog.Warn("configuration watch unavailable, runtime refresh disabled", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Warn("configuration watch stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- p.Run(ctx)
	}()

	fmt.Println()
	fmt.Printf("✓ Status endpoint: http://%s/status\n", cfg.Telemetry.Status.ListenAddress)
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Telemetry.Status.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()
		if err := <-errChan; err != nil {
			slog.Error("shutdown failed", "error", err)
			return err
		}
		fmt.Println("✓ Tracing pipeline stopped")
		return nil
	}
}

// loadConfig reads the configured file, falling back to pure defaults
// when the default config path does not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config") {
		cfg := config.NewDefault()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Telemetry.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Tracehub v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("sampling configured",
		"probability", cfg.Tracing.Sampling.Probability,
		"slow_threshold", cfg.Tracing.Sampling.SlowTraceThreshold,
		"evaluation_window", cfg.Tracing.Sampling.EvaluationWindow,
	)
	slog.Debug("export configured",
		"backends", len(cfg.Tracing.Export.Backends),
		"flush_interval", cfg.Tracing.Export.FlushInterval,
		"batch_size", cfg.Tracing.Export.BatchSize,
	)
}
