package sim

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stellalab/pulsereport/internal/series"
)

// WriteCSV writes the recorded histories to path as a results table with the
// canonical header. The file is written to a temp file in the same directory
// and renamed into place so a failed run never leaves a partial table.
func (r *Result) WriteCSV(path string) error {
	if len(r.Time) == 0 {
		return ErrNoHistory
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".results-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp results file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%s,%s,%s,%s\n",
		series.ColTime, series.ColCenterImpurity, series.ColEdgeImpurity, series.ColTurbulence)
	for i := range r.Time {
		// Densities in scientific notation, time and turbulence fixed point.
		fmt.Fprintf(w, "%.6f,%.6e,%.6e,%.4f\n",
			r.Time[i], r.CenterImpurity[i], r.EdgeImpurity[i], r.Turbulence[i])
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing results table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing results table: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming results table into place: %w", err)
	}
	return nil
}

// Run converts the result into a series.Run for analysis and charting.
func (r *Result) Run() *series.Run {
	return &series.Run{
		Time:           r.Time,
		CenterImpurity: r.CenterImpurity,
		EdgeImpurity:   r.EdgeImpurity,
		Turbulence:     r.Turbulence,
	}
}
