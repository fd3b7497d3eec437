package mcp

import (
	"github.com/stellalab/pulsereport/internal/pulse"
	"github.com/stellalab/pulsereport/internal/store"
)

// PulseDetectInput defines the input for the pulse_detect tool.
type PulseDetectInput struct {
	Path      string  `json:"path" jsonschema:"description=Path to the results CSV,required"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"description=Turbulence threshold; 0 uses the configured default"`
}

// PulseDetectOutput defines the output for the pulse_detect tool.
type PulseDetectOutput struct {
	Threshold float64          `json:"threshold" jsonschema:"description=Threshold used for detection"`
	Intervals []pulse.Interval `json:"intervals" jsonschema:"description=Detected pulse intervals sorted by start time"`
	Count     int              `json:"count" jsonschema:"description=Number of detected intervals"`
	Duration  float64          `json:"duration" jsonschema:"description=Time span of the loaded table in seconds"`
}

// PulseReportInput defines the input for the pulse_report tool.
type PulseReportInput struct {
	Path      string  `json:"path" jsonschema:"description=Path to the results CSV,required"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"description=Turbulence threshold; 0 uses the configured default"`
	ChartPath string  `json:"chart_path,omitempty" jsonschema:"description=If set, render the SVG chart to this path"`
}

// PulseReportOutput defines the output for the pulse_report tool.
type PulseReportOutput struct {
	Threshold             float64          `json:"threshold"`
	Duration              float64          `json:"duration" jsonschema:"description=Time span of the loaded table in seconds"`
	Intervals             []pulse.Interval `json:"intervals"`
	Count                 int              `json:"count"`
	MeanSpacing           float64          `json:"mean_spacing" jsonschema:"description=Mean gap between interventions in seconds"`
	InitialCenterImpurity float64          `json:"initial_center_impurity"`
	FinalCenterImpurity   float64          `json:"final_center_impurity"`
	ImpurityRatio         float64          `json:"impurity_ratio" jsonschema:"description=Final over initial center impurity"`
	ChartSVG              string           `json:"chart_svg,omitempty" jsonschema:"description=Path of the rendered chart when requested"`
}

// RunHistoryInput defines the input for the run_history tool.
type RunHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum number of runs to return (default 20)"`
}

// RunHistoryOutput defines the output for the run_history tool.
type RunHistoryOutput struct {
	Runs  []store.RunRecord `json:"runs" jsonschema:"description=Recent runs newest first"`
	Count int               `json:"count"`
}
