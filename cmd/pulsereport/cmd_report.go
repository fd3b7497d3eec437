package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stellalab/pulsereport/internal/chart"
	"github.com/stellalab/pulsereport/internal/report"
	"github.com/stellalab/pulsereport/internal/series"
	"github.com/stellalab/pulsereport/internal/store"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [results.csv]",
		Short: "Analyze a results table, render the chart, and print the summary",
		Long: `Load a simulation results table, detect control-pulse intervals in the
turbulence signal, render the three-panel SVG chart with the intervals
shaded, and print intervention statistics.

The report is all-or-nothing: a table with zero detected pulses fails
rather than reporting an undefined mean spacing.

Examples:
  pulsereport report                        # Use the configured results path
  pulsereport report /tmp/run.csv           # Explicit table
  pulsereport report --threshold 8.0        # Custom pulse threshold
  pulsereport report --no-chart             # Summary only`,
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
			chartPath, _ := cmd.Flags().GetString("chart")
			if chartPath == "" {
				chartPath = cfg.Output.ChartSVG
			}
			noChart, _ := cmd.Flags().GetBool("no-chart")

			started := time.Now().UTC()
			run, err := series.LoadCSV(csvPath)
			if err != nil {
				return err
			}

			rep, err := report.Build(run, threshold)
			if err != nil {
				return err
			}

			if !noChart {
				if err := chart.WriteFile(chartPath, run, rep.Intervals, cfg.Chart); err != nil {
					return err
				}
			} else {
				chartPath = ""
			}

			recordRun(cmd, cfg.Output.DataDir, store.RunRecord{
				Kind:                "report",
				StartedAt:           started,
				FinishedAt:          time.Now().UTC(),
				Samples:             run.Len(),
				Pulses:              rep.Summary.Count,
				MeanSpacing:         rep.Summary.MeanSpacing,
				FinalCenterImpurity: rep.FinalCenterImpurity,
				ResultsCSV:          csvPath,
				ChartSVG:            chartPath,
			})

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"report":    rep,
					"chart_svg": chartPath,
				})
			}
			fmt.Print(rep.Text())
			if chartPath != "" {
				fmt.Printf("\nChart saved: %s\n", chartPath)
			}
			return nil
		},
	}

	cmd.Flags().Float64("threshold", 0, "Turbulence pulse threshold (overrides config)")
	cmd.Flags().String("chart", "", "Chart SVG path (default from config)")
	cmd.Flags().Bool("no-chart", false, "Skip chart rendering")

	return cmd
}
