// Package pulse detects control-pulse intervals in recorded signals and
// derives intervention statistics from them.
//
// A pulse is a maximal contiguous stretch of samples whose value exceeds a
// fixed threshold, interpreted as one active control intervention.
package pulse

import (
	"errors"
	"fmt"

	"github.com/stellalab/pulsereport/internal/series"
)

// Interval is one contiguous stretch where the signal exceeded the
// threshold. Start < End always holds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Summary holds intervention statistics derived from detected intervals.
type Summary struct {
	Count       int     `json:"count"`
	MeanSpacing float64 `json:"mean_spacing"`
}

// ErrNoPulses indicates that mean spacing was requested for zero detected
// intervals, which is undefined.
var ErrNoPulses = errors.New("pulse: no intervals detected, mean spacing undefined")

// Detect returns the maximal contiguous intervals of s where the value
// strictly exceeds threshold.
//
// A rising edge at sample i opens an interval at s[i].Time; a falling edge
// at sample i closes it at s[i].Time, so the closing boundary is the first
// sample after the run. If the series ends while still active the interval
// is closed at the last sample's time; a run consisting only of the final
// sample is dropped because it has no extent.
//
// The returned intervals are sorted by start, mutually non-overlapping, and
// each satisfies Start < End. Detection is a pure function of its inputs.
func Detect(s series.Series, threshold float64) ([]Interval, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var intervals []Interval
	open := false
	var start float64
	for _, smp := range s {
		active := smp.Value > threshold
		switch {
		case active && !open:
			open = true
			start = smp.Time
		case !active && open:
			intervals = append(intervals, Interval{Start: start, End: smp.Time})
			open = false
		}
	}
	if open {
		if last := s[len(s)-1].Time; last > start {
			intervals = append(intervals, Interval{Start: start, End: last})
		}
	}
	return intervals, nil
}

// Summarize derives intervention statistics from detected intervals over a
// search span of totalDuration seconds. Mean spacing is totalDuration
// divided by the interval count.
//
// Returns ErrNoPulses when intervals is empty; the spacing of zero pulses
// is undefined and must not silently become infinity.
func Summarize(intervals []Interval, totalDuration float64) (Summary, error) {
	if totalDuration <= 0 {
		return Summary{}, fmt.Errorf("pulse: total duration must be positive, got %g", totalDuration)
	}
	if len(intervals) == 0 {
		return Summary{}, ErrNoPulses
	}
	return Summary{
		Count:       len(intervals),
		MeanSpacing: totalDuration / float64(len(intervals)),
	}, nil
}
