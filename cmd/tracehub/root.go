package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tracehub",
	Short: "Tracehub - tracing core for the Bloco wallet platform",
	Long: `Tracehub is the distributed-tracing core used by the Bloco wallet
services. It manages span lifecycles with per-component feature gates,
scrubs sensitive identifiers from every attribute, applies tail-based
sampling that always keeps errors and slow traces, and exports the
survivors over OTLP with circuit-breaker-protected backend failover.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
