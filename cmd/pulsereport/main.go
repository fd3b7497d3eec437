package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stellalab/pulsereport/internal/config"
	"github.com/stellalab/pulsereport/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pulsereport",
		Short: "W7-X turbulence-control simulation and intervention reporting",
		Long: `pulsereport runs the W7-X adaptive turbulence-control simulation and
analyzes its results: it detects active control-pulse intervals in the
recorded turbulence signal, renders the three-panel results chart, and
reports intervention statistics.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default ~/.pulsereport/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log verbosity: info or debug")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newReportCmd(),
		newDetectCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// loadConfig resolves configuration for a command invocation:
// defaults -> config file -> environment -> command-line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

// newLoggers creates the operational logger and the decision trace logger
// for a command invocation. The decision logger may be nil (nil-safe).
func newLoggers(cfg *config.Config) (*slog.Logger, *logging.DecisionLogger) {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr),
		logging.NewDecisionLogger(cfg.Output.DataDir, cfg.Logging.Level)
}
