// Package report assembles the intervention report for a simulation run:
// detected control pulses, their summary statistics, and the final impurity
// figures printed to the console.
package report

import (
	"fmt"
	"strings"

	"github.com/stellalab/pulsereport/internal/pulse"
	"github.com/stellalab/pulsereport/internal/series"
)

// Report is the full analysis of one results table.
type Report struct {
	Threshold             float64          `json:"threshold"`
	Duration              float64          `json:"duration"`
	Intervals             []pulse.Interval `json:"intervals"`
	Summary               pulse.Summary    `json:"summary"`
	InitialCenterImpurity float64          `json:"initial_center_impurity"`
	FinalCenterImpurity   float64          `json:"final_center_impurity"`
	ImpurityRatio         float64          `json:"impurity_ratio"`
}

// Build analyzes run: control pulses are detected on the turbulence signal
// against threshold, summarized over the run's own duration, and combined
// with the center-impurity outcome figures.
//
// A run with zero detected pulses is an error (pulse.ErrNoPulses): the mean
// spacing statistic is undefined and the report contract is all-or-nothing.
func Build(run *series.Run, threshold float64) (*Report, error) {
	if err := run.Validate(); err != nil {
		return nil, err
	}

	intervals, err := pulse.Detect(run.TurbulenceSeries(), threshold)
	if err != nil {
		return nil, fmt.Errorf("detecting pulses: %w", err)
	}
	summary, err := pulse.Summarize(intervals, run.Duration())
	if err != nil {
		return nil, err
	}

	initial := run.CenterImpurity[0]
	final := run.CenterImpurity[run.Len()-1]
	if initial == 0 {
		return nil, fmt.Errorf("report: initial center impurity is zero, ratio undefined")
	}

	return &Report{
		Threshold:             threshold,
		Duration:              run.Duration(),
		Intervals:             intervals,
		Summary:               summary,
		InitialCenterImpurity: initial,
		FinalCenterImpurity:   final,
		ImpurityRatio:         final / initial,
	}, nil
}

// Text formats the report for the console.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interventions: %d\n\n", r.Summary.Count)
	fmt.Fprintf(&b, "Final statistics:\n")
	fmt.Fprintf(&b, "  Center impurity:    %.2e m⁻³\n", r.FinalCenterImpurity)
	fmt.Fprintf(&b, "  Ratio to initial:   %.2fx\n", r.ImpurityRatio)
	fmt.Fprintf(&b, "  Mean pulse spacing: %.2fs\n", r.Summary.MeanSpacing)
	return b.String()
}
