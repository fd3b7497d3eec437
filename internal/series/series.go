// Package series defines the sample model for recorded simulation signals
// and loads results tables from CSV.
package series

import (
	"errors"
	"fmt"
)

// Sample is one (time, value) observation of a monitored signal.
// Time is in seconds; the value unit depends on the signal.
type Sample struct {
	Time  float64
	Value float64
}

// Series is a time-ordered sequence of samples.
type Series []Sample

// ErrEmpty indicates a series with no samples.
var ErrEmpty = errors.New("series: empty")

// ErrNonMonotonicTime indicates two consecutive samples whose timestamps
// are not strictly increasing.
var ErrNonMonotonicTime = errors.New("series: time not strictly increasing")

// Validate checks that the series is non-empty and that timestamps are
// strictly increasing.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmpty
	}
	for i := 1; i < len(s); i++ {
		if s[i].Time <= s[i-1].Time {
			return fmt.Errorf("%w: t[%d]=%g, t[%d]=%g",
				ErrNonMonotonicTime, i-1, s[i-1].Time, i, s[i].Time)
		}
	}
	return nil
}

// Duration returns the time span covered by the series.
// Zero for series with fewer than two samples.
func (s Series) Duration() float64 {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Time - s[0].Time
}

// Run is one loaded simulation results table. All columns have equal length
// and share the time axis.
type Run struct {
	Time           []float64
	CenterImpurity []float64
	EdgeImpurity   []float64
	Turbulence     []float64
}

// Len returns the number of rows in the run.
func (r *Run) Len() int { return len(r.Time) }

// Duration returns the time span covered by the run.
func (r *Run) Duration() float64 {
	if len(r.Time) < 2 {
		return 0
	}
	return r.Time[len(r.Time)-1] - r.Time[0]
}

// Validate checks column lengths and the time axis.
func (r *Run) Validate() error {
	if len(r.Time) == 0 {
		return ErrEmpty
	}
	if len(r.CenterImpurity) != len(r.Time) ||
		len(r.EdgeImpurity) != len(r.Time) ||
		len(r.Turbulence) != len(r.Time) {
		return fmt.Errorf("series: column length mismatch: time=%d center=%d edge=%d turbulence=%d",
			len(r.Time), len(r.CenterImpurity), len(r.EdgeImpurity), len(r.Turbulence))
	}
	for i := 1; i < len(r.Time); i++ {
		if r.Time[i] <= r.Time[i-1] {
			return fmt.Errorf("%w: row %d", ErrNonMonotonicTime, i)
		}
	}
	return nil
}

// CenterSeries returns the center impurity signal paired with the time axis.
func (r *Run) CenterSeries() Series { return r.signal(r.CenterImpurity) }

// EdgeSeries returns the edge impurity signal paired with the time axis.
func (r *Run) EdgeSeries() Series { return r.signal(r.EdgeImpurity) }

// TurbulenceSeries returns the turbulence signal paired with the time axis.
func (r *Run) TurbulenceSeries() Series { return r.signal(r.Turbulence) }

func (r *Run) signal(values []float64) Series {
	s := make(Series, len(r.Time))
	for i := range r.Time {
		s[i] = Sample{Time: r.Time[i], Value: values[i]}
	}
	return s
}
