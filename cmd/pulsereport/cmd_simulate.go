package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stellalab/pulsereport/internal/sim"
	"github.com/stellalab/pulsereport/internal/store"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the turbulence-control simulation and write the results table",
		Long: `Run the 1D radial impurity-transport simulation with adaptive pulse
control and write the recorded signal histories as a CSV results table.

Examples:
  pulsereport simulate                     # Full 10s run with defaults
  pulsereport simulate --t-max 2.0         # Shorter run
  pulsereport simulate --out /tmp/run.csv  # Custom output path`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetFloat64("t-max"); v > 0 {
				cfg.Sim.TMax = v
			}
			if v, _ := cmd.Flags().GetFloat64("dt"); v > 0 {
				cfg.Sim.Dt = v
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = cfg.Output.ResultsCSV
			}

			log, decisions := newLoggers(cfg)
			defer decisions.Close()

			started := time.Now().UTC()
			state, err := sim.New(cfg.Sim, log, decisions)
			if err != nil {
				return err
			}

			res, err := state.Run(cmd.Context())
			if err != nil {
				return err
			}
			if err := res.WriteCSV(out); err != nil {
				return err
			}

			final := res.CenterImpurity[len(res.CenterImpurity)-1]
			recordRun(cmd, cfg.Output.DataDir, store.RunRecord{
				Kind:                "simulate",
				StartedAt:           started,
				FinishedAt:          time.Now().UTC(),
				Samples:             res.Steps,
				Pulses:              res.Pulses,
				FinalCenterImpurity: final,
				ResultsCSV:          out,
			})

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"results_csv":           out,
					"steps":                 res.Steps,
					"pulses":                res.Pulses,
					"final_center_impurity": final,
					"t_max":                 cfg.Sim.TMax,
				})
			}
			fmt.Printf("Simulation complete: %d steps, %d control pulses\n", res.Steps, res.Pulses)
			fmt.Printf("  Final center impurity: %.2e m⁻³\n", final)
			fmt.Printf("  Results table: %s\n", out)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Results CSV path (default from config)")
	cmd.Flags().Float64("t-max", 0, "Simulated duration in seconds (overrides config)")
	cmd.Flags().Float64("dt", 0, "Integration time step in seconds (overrides config)")

	return cmd
}

// recordRun stores a completed run in the history database. History is
// best-effort: a failure is logged to stderr but never fails the command
// that already produced its artifacts.
func recordRun(cmd *cobra.Command, dataDir string, rec store.RunRecord) {
	runStore, err := store.Open(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run history unavailable: %v\n", err)
		return
	}
	defer runStore.Close()

	if _, err := runStore.Record(cmd.Context(), rec); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
	}
}
