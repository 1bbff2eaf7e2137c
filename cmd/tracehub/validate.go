package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bloco-hq/tracehub/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a tracehub configuration file without starting the pipeline.

The validate command parses the configuration, applies defaults and
environment overrides, and runs the same validation the run command
performs at startup:
  - YAML syntax validation
  - Sampling bounds (probability, window, buffer limits)
  - Export backend endpoints and circuit breaker settings
  - Telemetry listen address and log level

Examples:
  # Validate the default config file
  tracehub validate

  # Validate a specific file
  tracehub validate --config /etc/tracehub/config.yaml

  # JSON output for CI/CD
  tracehub validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// configReport is the machine-readable result of a validation run.
type configReport struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Backends int      `json:"backends"`
	Errors   []string `json:"errors,omitempty"`
}

func validateConfig(cmd *cobra.Command, args []string) error {
	report := configReport{File: cfgFile, Valid: true}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		report.Valid = false

		var verr config.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				report.Errors = append(report.Errors, fe.Error())
			}
		} else {
			report.Errors = append(report.Errors, err.Error())
		}
	} else {
		report.Backends = len(cfg.Tracing.Export.Backends)
	}

	if validateFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if !report.Valid {
			os.Exit(1)
		}
		return nil
	}

	if !report.Valid {
		fmt.Printf("✗ %s\n", cfgFile)
		for _, msg := range report.Errors {
			fmt.Printf("  - %s\n", msg)
		}
		os.Exit(1)
	}

	fmt.Printf("✓ %s\n", cfgFile)
	fmt.Printf("  service: %s\n", cfg.Tracing.ServiceName)
	fmt.Printf("  sampling probability: %v\n", cfg.Tracing.Sampling.Probability)
	fmt.Printf("  export backends: %d\n", report.Backends)
	return nil
}
