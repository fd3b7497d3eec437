package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellalab/pulsereport/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent simulation and report runs",
		Long: `List runs recorded in the history database, newest first.

Examples:
  pulsereport history
  pulsereport history --limit 5
  pulsereport history --prune 50   # Keep only the newest 50 runs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			runStore, err := store.Open(cfg.Output.DataDir)
			if err != nil {
				return err
			}
			defer runStore.Close()

			if cmd.Flags().Changed("prune") {
				keep, _ := cmd.Flags().GetInt("prune")
				removed, err := runStore.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				if !jsonOut {
					fmt.Printf("Pruned %d run(s)\n", removed)
				}
			}

			runs, err := runStore.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}
			fmt.Print(formatHistory(runs))
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	cmd.Flags().Int("prune", 0, "Delete all but the newest N runs first")

	return cmd
}

// formatHistory renders run records as a console table.
func formatHistory(runs []store.RunRecord) string {
	if len(runs) == 0 {
		return "No recorded runs.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-9s %-20s %8s %7s %9s\n",
		"ID", "Kind", "Started", "Samples", "Pulses", "Spacing")
	b.WriteString(strings.Repeat("-", 70))
	b.WriteString("\n")
	for _, r := range runs {
		spacing := "-"
		if r.MeanSpacing > 0 {
			spacing = fmt.Sprintf("%.2fs", r.MeanSpacing)
		}
		fmt.Fprintf(&b, "%-12s %-9s %-20s %8d %7d %9s\n",
			r.ID, r.Kind, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Samples, r.Pulses, spacing)
	}
	return b.String()
}
