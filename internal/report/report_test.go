package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/stellalab/pulsereport/internal/pulse"
	"github.com/stellalab/pulsereport/internal/series"
)

func testRun() *series.Run {
	// 10 second run with two turbulence pulses.
	run := &series.Run{}
	for i := 0; i <= 100; i++ {
		t := float64(i) * 0.1
		run.Time = append(run.Time, t)
		run.CenterImpurity = append(run.CenterImpurity, 2e17+1e16*t)
		run.EdgeImpurity = append(run.EdgeImpurity, 8e17)
		turb := 4.0
		if (t >= 2 && t < 3) || (t >= 6 && t < 7) {
			turb = 12.0
		}
		run.Turbulence = append(run.Turbulence, turb)
	}
	return run
}

func TestBuild(t *testing.T) {
	r, err := Build(testRun(), 10.0)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if r.Summary.Count != 2 {
		t.Errorf("Count = %d, want 2", r.Summary.Count)
	}
	if r.Summary.MeanSpacing != 5.0 {
		t.Errorf("MeanSpacing = %g, want 5.0", r.Summary.MeanSpacing)
	}
	if r.Duration != 10.0 {
		t.Errorf("Duration = %g, want 10.0", r.Duration)
	}
	if r.ImpurityRatio <= 1.0 {
		t.Errorf("ImpurityRatio = %g, want > 1 for a growing signal", r.ImpurityRatio)
	}
	for i, iv := range r.Intervals {
		if iv.Start >= iv.End {
			t.Errorf("interval %d: start %g >= end %g", i, iv.Start, iv.End)
		}
	}
}

func TestBuildNoPulses(t *testing.T) {
	run := testRun()
	_, err := Build(run, 100.0) // nothing crosses this threshold
	if !errors.Is(err, pulse.ErrNoPulses) {
		t.Errorf("error = %v, want ErrNoPulses", err)
	}
}

func TestBuildInvalidRun(t *testing.T) {
	if _, err := Build(&series.Run{}, 10.0); err == nil {
		t.Error("expected error for empty run")
	}
}

func TestBuildZeroInitialImpurity(t *testing.T) {
	run := testRun()
	run.CenterImpurity[0] = 0
	if _, err := Build(run, 10.0); err == nil {
		t.Error("expected error for zero initial impurity")
	}
}

func TestText(t *testing.T) {
	r, err := Build(testRun(), 10.0)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	out := r.Text()

	for _, want := range []string{
		"Interventions: 2",
		"Center impurity:",
		"Ratio to initial:",
		"Mean pulse spacing: 5.00s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text() missing %q in:\n%s", want, out)
		}
	}
}
