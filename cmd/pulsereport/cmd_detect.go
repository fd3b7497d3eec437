package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellalab/pulsereport/internal/pulse"
	"github.com/stellalab/pulsereport/internal/series"
)

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [results.csv]",
		Short: "List control-pulse intervals in a results table",
		Long: `Detect contiguous intervals where the turbulence signal exceeds the
pulse threshold and list them, without building the full report.

Examples:
  pulsereport detect /tmp/run.csv
  pulsereport detect --threshold 8.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			csvPath := cfg.Output.ResultsCSV
			if len(args) > 0 {
				csvPath = args[0]
			}
			threshold := cfg.Pulse.Threshold
			if v, _ := cmd.Flags().GetFloat64("threshold"); v > 0 {
				threshold = v
			}

			run, err := series.LoadCSV(csvPath)
			if err != nil {
				return err
			}
			intervals, err := pulse.Detect(run.TurbulenceSeries(), threshold)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"threshold": threshold,
					"intervals": intervals,
					"count":     len(intervals),
				})
			}
			fmt.Print(formatIntervals(intervals, threshold))
			return nil
		},
	}

	cmd.Flags().Float64("threshold", 0, "Turbulence pulse threshold (overrides config)")

	return cmd
}

// formatIntervals renders detected intervals as a console table.
func formatIntervals(intervals []pulse.Interval, threshold float64) string {
	var b strings.Builder
	if len(intervals) == 0 {
		fmt.Fprintf(&b, "No pulses above threshold %.2f\n", threshold)
		return b.String()
	}

	fmt.Fprintf(&b, "Pulses above threshold %.2f:\n\n", threshold)
	fmt.Fprintf(&b, "%-5s %10s %10s %10s\n", "#", "Start", "End", "Length")
	for i, iv := range intervals {
		fmt.Fprintf(&b, "%-5d %9.3fs %9.3fs %9.3fs\n", i+1, iv.Start, iv.End, iv.End-iv.Start)
	}
	fmt.Fprintf(&b, "\nTotal: %d\n", len(intervals))
	return b.String()
}
