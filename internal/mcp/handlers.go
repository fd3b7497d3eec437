package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/stellalab/pulsereport/internal/chart"
	"github.com/stellalab/pulsereport/internal/pulse"
	"github.com/stellalab/pulsereport/internal/report"
	"github.com/stellalab/pulsereport/internal/series"
	"github.com/stellalab/pulsereport/internal/store"
)

// threshold resolves a tool-supplied threshold against the configured default.
func (s *Server) threshold(v float64) float64 {
	if v > 0 {
		return v
	}
	return s.cfg.Pulse.Threshold
}

func (s *Server) handlePulseDetect(ctx context.Context, req *sdk.CallToolRequest, args PulseDetectInput) (*sdk.CallToolResult, PulseDetectOutput, error) {
	run, err := series.LoadCSV(args.Path)
	if err != nil {
		return nil, PulseDetectOutput{}, err
	}

	threshold := s.threshold(args.Threshold)
	intervals, err := pulse.Detect(run.TurbulenceSeries(), threshold)
	if err != nil {
		return nil, PulseDetectOutput{}, err
	}

	return nil, PulseDetectOutput{
		Threshold: threshold,
		Intervals: intervals,
		Count:     len(intervals),
		Duration:  run.Duration(),
	}, nil
}

func (s *Server) handlePulseReport(ctx context.Context, req *sdk.CallToolRequest, args PulseReportInput) (*sdk.CallToolResult, PulseReportOutput, error) {
	started := time.Now().UTC()

	run, err := series.LoadCSV(args.Path)
	if err != nil {
		return nil, PulseReportOutput{}, err
	}

	threshold := s.threshold(args.Threshold)
	rep, err := report.Build(run, threshold)
	if err != nil {
		return nil, PulseReportOutput{}, err
	}

	if args.ChartPath != "" {
		if err := chart.WriteFile(args.ChartPath, run, rep.Intervals, s.cfg.Chart); err != nil {
			return nil, PulseReportOutput{}, err
		}
	}

	// History recording is best-effort; the report itself already succeeded.
	_, _ = s.store.Record(ctx, store.RunRecord{
		Kind:                "report",
		StartedAt:           started,
		FinishedAt:          time.Now().UTC(),
		Samples:             run.Len(),
		Pulses:              rep.Summary.Count,
		MeanSpacing:         rep.Summary.MeanSpacing,
		FinalCenterImpurity: rep.FinalCenterImpurity,
		ResultsCSV:          args.Path,
		ChartSVG:            args.ChartPath,
	})

	return nil, PulseReportOutput{
		Threshold:             rep.Threshold,
		Duration:              rep.Duration,
		Intervals:             rep.Intervals,
		Count:                 rep.Summary.Count,
		MeanSpacing:           rep.Summary.MeanSpacing,
		InitialCenterImpurity: rep.InitialCenterImpurity,
		FinalCenterImpurity:   rep.FinalCenterImpurity,
		ImpurityRatio:         rep.ImpurityRatio,
		ChartSVG:              args.ChartPath,
	}, nil
}

func (s *Server) handleRunHistory(ctx context.Context, req *sdk.CallToolRequest, args RunHistoryInput) (*sdk.CallToolResult, RunHistoryOutput, error) {
	runs, err := s.store.Recent(ctx, args.Limit)
	if err != nil {
		return nil, RunHistoryOutput{}, err
	}
	return nil, RunHistoryOutput{Runs: runs, Count: len(runs)}, nil
}
