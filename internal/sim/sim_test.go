package sim

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stellalab/pulsereport/internal/series"
)

// fastParams returns a parameter set small enough for unit tests.
func fastParams() Params {
	p := DefaultParams()
	p.Dt = 0.001
	p.TMax = 0.05
	return p
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults are valid", func(p *Params) {}, false},
		{"too few grid points", func(p *Params) { p.GridPoints = 2 }, true},
		{"zero dt", func(p *Params) { p.Dt = 0 }, true},
		{"negative t_max", func(p *Params) { p.TMax = -1 }, true},
		{"zero pulse duration", func(p *Params) { p.PulseDuration = 0 }, true},
		{"zero growth window", func(p *Params) { p.GrowthWindow = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewInitializesProfiles(t *testing.T) {
	s, err := New(DefaultParams(), nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Parabolic electron profiles peak on axis.
	if got := s.electronDensity[0]; got != 8e19 {
		t.Errorf("core electron density = %g, want 8e19", got)
	}
	if got := s.electronTemp[0]; got != 8.0 {
		t.Errorf("core electron temp = %g, want 8.0", got)
	}

	// Hollow initial impurity profile: edge above core.
	last := len(s.impurity) - 1
	if s.impurity[0] >= s.impurity[last] {
		t.Errorf("impurity profile not hollow: core %g >= edge %g",
			s.impurity[0], s.impurity[last])
	}
}

func TestTurbulencePulseBoostsEdge(t *testing.T) {
	s, err := New(DefaultParams(), nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Pick a grid point in the pulse-affected edge region, away from the
	// boundary clamp at r > 0.98.
	idx := 0
	for i, r := range s.radius {
		if r > 0.75 && r < 0.95 {
			idx = i
			break
		}
	}

	s.mode = ModeNormal
	normal := s.turbulenceLevel(idx)
	s.mode = ModePulse
	pulsed := s.turbulenceLevel(idx)

	if pulsed <= normal {
		t.Errorf("pulse mode turbulence %g not above normal %g at r=%g",
			pulsed, normal, s.radius[idx])
	}
}

func TestStepKeepsDensityBounded(t *testing.T) {
	s, err := New(fastParams(), nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 50; i++ {
		s.Step()
	}
	for i, v := range s.impurity {
		if v < 0 || v > 1e20 {
			t.Errorf("impurity[%d] = %g out of bounds", i, v)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("impurity[%d] = %g not finite", i, v)
		}
	}
	if len(s.timeHist) != 50 {
		t.Errorf("recorded %d history rows, want 50", len(s.timeHist))
	}
}

func TestControllerFiresPulse(t *testing.T) {
	p := fastParams()
	// Initial core impurity is 2e17; a lower threshold must trigger
	// a pulse immediately.
	p.CenterThreshold = 1e17
	p.PulseDuration = 0.005

	s, err := New(p, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Pulses == 0 {
		t.Error("expected at least one control pulse")
	}
}

func TestCooldownLimitsPulseRate(t *testing.T) {
	p := fastParams()
	p.CenterThreshold = 1e17 // always above threshold
	p.PulseDuration = 0.002
	p.Cooldown = 1.0 // longer than the whole run

	s, err := New(p, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Pulses > 1 {
		t.Errorf("cooldown violated: %d pulses in %.3fs run", res.Pulses, p.TMax)
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(DefaultParams(), nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Run(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	s, err := New(fastParams(), nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "results.csv")
	if err := res.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	run, err := series.LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if run.Len() != len(res.Time) {
		t.Fatalf("loaded %d rows, want %d", run.Len(), len(res.Time))
	}

	// CSV formatting rounds; compare within formatting precision.
	for i := 0; i < run.Len(); i += run.Len()/10 + 1 {
		if diff := math.Abs(run.Time[i] - res.Time[i]); diff > 1e-6 {
			t.Errorf("row %d: time %g vs %g", i, run.Time[i], res.Time[i])
		}
		if res.CenterImpurity[i] != 0 {
			rel := math.Abs(run.CenterImpurity[i]-res.CenterImpurity[i]) / res.CenterImpurity[i]
			if rel > 1e-5 {
				t.Errorf("row %d: center impurity %g vs %g", i, run.CenterImpurity[i], res.CenterImpurity[i])
			}
		}
	}
}

func TestWriteCSVEmptyResult(t *testing.T) {
	res := &Result{}
	if err := res.WriteCSV(filepath.Join(t.TempDir(), "results.csv")); err == nil {
		t.Error("expected error for empty result")
	}
}
