// Package sim implements the W7-X adaptive turbulence-control simulation:
// 1D radial impurity transport with neoclassical and ITG-driven turbulent
// diffusion, and an adaptive controller that fires edge turbulence pulses
// when impurity accumulates in the core.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/stellalab/pulsereport/internal/logging"
)

// Mode is the confinement mode of the plasma.
type Mode int

const (
	// ModeNormal is quiescent confinement with marginal-stability
	// turbulence suppression.
	ModeNormal Mode = iota
	// ModePulse is an active control pulse with enhanced edge turbulence.
	ModePulse
)

func (m Mode) String() string {
	if m == ModePulse {
		return "pulse"
	}
	return "normal"
}

// Params holds all simulation tunables.
type Params struct {
	// GridPoints is the number of radial grid points on [0,1].
	GridPoints int `yaml:"grid_points"`

	// DNeo is the neoclassical diffusion coefficient (m²/s).
	DNeo float64 `yaml:"d_neo"`

	// DTurbBase is the base turbulent diffusion coefficient (m²/s).
	DTurbBase float64 `yaml:"d_turb_base"`

	// VNeo is the neoclassical pinch velocity (m/s, negative = inward).
	VNeo float64 `yaml:"v_neo"`

	// PulseDuration is how long a control pulse stays on (s).
	PulseDuration float64 `yaml:"pulse_duration"`

	// Cooldown is the minimum gap between consecutive pulses (s).
	Cooldown float64 `yaml:"cooldown"`

	// Dt is the integration time step (s).
	Dt float64 `yaml:"dt"`

	// TMax is the simulated duration (s).
	TMax float64 `yaml:"t_max"`

	// CenterThreshold is the core impurity density that triggers a pulse (m⁻³).
	CenterThreshold float64 `yaml:"center_threshold"`

	// GrowthRate is the core density growth rate that triggers a pulse (m⁻³/s).
	GrowthRate float64 `yaml:"growth_rate"`

	// GrowthWindow is the number of history steps over which growth is measured.
	GrowthWindow int `yaml:"growth_window"`

	// EdgeSource is the impurity source strength for r > 0.85 (m⁻³/s).
	EdgeSource float64 `yaml:"edge_source"`
}

// DefaultParams returns the tuned v2 parameter set.
func DefaultParams() Params {
	return Params{
		GridPoints:      101,
		DNeo:            0.02,
		DTurbBase:       1.5,
		VNeo:            -0.5,
		PulseDuration:   0.2,
		Cooldown:        0.5,
		Dt:              0.00002,
		TMax:            10.0,
		CenterThreshold: 8e17,
		GrowthRate:      1.5e18,
		GrowthWindow:    100,
		EdgeSource:      2.5e17,
	}
}

// Validate checks the parameter set for values the solver cannot handle.
func (p Params) Validate() error {
	if p.GridPoints < 3 {
		return fmt.Errorf("sim: grid_points must be at least 3, got %d", p.GridPoints)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %g", p.Dt)
	}
	if p.TMax <= 0 {
		return fmt.Errorf("sim: t_max must be positive, got %g", p.TMax)
	}
	if p.PulseDuration <= 0 {
		return fmt.Errorf("sim: pulse_duration must be positive, got %g", p.PulseDuration)
	}
	if p.GrowthWindow < 1 {
		return fmt.Errorf("sim: growth_window must be at least 1, got %d", p.GrowthWindow)
	}
	return nil
}

// State is the full simulation state. Create with New, advance with Step or
// Run. Not safe for concurrent use; the simulation is a single batch pass.
type State struct {
	p  Params
	dr float64

	radius          []float64
	impurity        []float64
	electronDensity []float64
	electronTemp    []float64

	mode         Mode
	time         float64
	pulseStart   float64
	lastPulseEnd float64
	hasPulsed    bool
	pulses       int
	step         int

	timeHist   []float64
	centerHist []float64
	edgeHist   []float64
	turbHist   []float64

	log       *slog.Logger
	decisions *logging.DecisionLogger
}

// New creates a simulation state with initialized radial profiles.
// log may be nil; decisions may be nil (both then discard).
func New(p Params, log *slog.Logger, decisions *logging.DecisionLogger) (*State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &State{
		p:               p,
		dr:              1.0 / float64(p.GridPoints-1),
		radius:          make([]float64, p.GridPoints),
		impurity:        make([]float64, p.GridPoints),
		electronDensity: make([]float64, p.GridPoints),
		electronTemp:    make([]float64, p.GridPoints),
		log:             log,
		decisions:       decisions,
	}
	for i := range s.radius {
		s.radius[i] = float64(i) * s.dr
	}
	s.initProfiles()
	return s, nil
}

// initProfiles sets parabolic electron profiles and a hollow initial
// impurity profile.
func (s *State) initProfiles() {
	for i, r := range s.radius {
		s.electronDensity[i] = 8e19 * (1.0 - r*r)
		s.electronTemp[i] = 8.0 * (1.0 - r*r)
		s.impurity[i] = 1e18 * (0.2 + 0.8*r*r)
	}
}

// turbulenceLevel returns the turbulent diffusion coefficient at grid
// point i for the current confinement mode. The ITG drive is estimated
// from the ratio of density to temperature gradient lengths; near marginal
// stability (0.8 < eta < 1.2) turbulence is suppressed.
func (s *State) turbulenceLevel(i int) float64 {
	r := s.radius[i]
	if r < 0.02 || r > 0.98 {
		return 0.05
	}

	dnDr := (s.electronDensity[i+1] - s.electronDensity[i-1]) / (2.0 * s.dr)
	dtDr := (s.electronTemp[i+1] - s.electronTemp[i-1]) / (2.0 * s.dr)

	ln := abs(s.electronDensity[i] / max(abs(dnDr), 1e-10))
	lt := abs(s.electronTemp[i] / max(abs(dtDr), 1e-10))
	eta := clamp(ln/lt, 0.1, 10.0)

	factor := 1.0
	switch s.mode {
	case ModeNormal:
		if eta > 0.8 && eta < 1.2 {
			factor = 0.3
		}
	case ModePulse:
		if r > 0.7 {
			factor = 5.0
		}
	}
	return s.p.DTurbBase * factor
}

// flux returns the radial impurity flux at grid point i:
// pinch term plus diffusive term with total diffusivity.
func (s *State) flux(i int) float64 {
	if i == 0 || i >= s.p.GridPoints-1 {
		return 0.0
	}
	nz := s.impurity[i]
	dnzDr := (s.impurity[i+1] - s.impurity[i-1]) / (2.0 * s.dr)
	dTotal := s.p.DNeo + s.turbulenceLevel(i)
	return s.p.VNeo*nz - dTotal*dnzDr
}

// accumulationDetected reports whether core impurity has built up enough
// to warrant a control pulse: either the absolute core density exceeds the
// threshold, or the density is growing faster than the configured rate over
// the growth window.
func (s *State) accumulationDetected() bool {
	if s.impurity[0] > s.p.CenterThreshold {
		return true
	}
	n := len(s.centerHist)
	if n > s.p.GrowthWindow {
		last := n - 1
		prev := last - s.p.GrowthWindow
		dt := s.timeHist[last] - s.timeHist[prev]
		if dt > 0 {
			rate := (s.centerHist[last] - s.centerHist[prev]) / dt
			if rate > s.p.GrowthRate {
				return true
			}
		}
	}
	return false
}

// updateControl runs the adaptive pulse controller: in normal mode it fires
// a pulse on detected accumulation once the cooldown has elapsed; in pulse
// mode it returns to normal after the pulse duration.
func (s *State) updateControl() {
	switch s.mode {
	case ModeNormal:
		canPulse := !s.hasPulsed || s.time-s.lastPulseEnd > s.p.Cooldown
		if canPulse && s.accumulationDetected() {
			s.mode = ModePulse
			s.pulseStart = s.time
			s.pulses++
			s.log.Info("impurity accumulation detected, starting pulse",
				"t", s.time, "center_nz", s.impurity[0], "pulse", s.pulses)
			s.decisions.Log(map[string]any{
				"event":     "pulse_start",
				"t":         s.time,
				"center_nz": s.impurity[0],
				"pulse":     s.pulses,
			})
		}
	case ModePulse:
		if s.time-s.pulseStart > s.p.PulseDuration {
			s.mode = ModeNormal
			s.lastPulseEnd = s.time
			s.hasPulsed = true
			s.log.Info("returning to normal confinement",
				"t", s.time, "cooldown", s.p.Cooldown)
			s.decisions.Log(map[string]any{
				"event": "pulse_end",
				"t":     s.time,
			})
		}
	}
}

// Step advances the simulation by one time step: controller update, then an
// explicit finite-volume update of the transport equation in cylindrical
// geometry, then history recording.
func (s *State) Step() {
	s.updateControl()

	nr := s.p.GridPoints
	dt := s.p.Dt
	next := make([]float64, nr)
	copy(next, s.impurity)

	for i := 1; i < nr-1; i++ {
		r := s.radius[i]
		fluxP := s.flux(i)
		fluxM := s.flux(i - 1)

		rp := r + 0.5*s.dr
		rm := r - 0.5*s.dr

		var divFlux float64
		if r > 0.01 {
			divFlux = (rp*fluxP - rm*fluxM) / (r * s.dr)
		} else {
			divFlux = (fluxP - fluxM) / s.dr
		}

		source := 0.0
		if r > 0.85 {
			source = s.p.EdgeSource
		}

		v := s.impurity[i] + (-divFlux+source)*dt
		next[i] = clamp(v, 0.0, 1e20)
	}

	// Boundary conditions: zero-gradient core, partially absorbing edge.
	next[0] = next[1]
	next[nr-1] = 0.3 * next[nr-2]
	s.impurity = next

	s.timeHist = append(s.timeHist, s.time)
	s.centerHist = append(s.centerHist, s.impurity[0])
	s.edgeHist = append(s.edgeHist, s.impurity[nr-1])
	s.turbHist = append(s.turbHist, s.turbulenceLevel(nr-2))

	s.time += dt
	s.step++
}

// progressEvery is the step interval for progress logging and context checks.
const progressEvery = 10000

// Run advances the simulation until TMax or ctx is cancelled.
func (s *State) Run(ctx context.Context) (*Result, error) {
	for s.time < s.p.TMax {
		if s.step%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("simulation cancelled at t=%.3f: %w", s.time, err)
			}
			s.log.Debug("simulation progress",
				"t", s.time, "center_nz", s.impurity[0], "mode", s.mode.String())
		}
		s.Step()
	}

	s.log.Info("simulation complete",
		"steps", s.step,
		"pulses", s.pulses,
		"center_nz", s.impurity[0],
		"edge_nz", s.impurity[s.p.GridPoints-1])

	return &Result{
		Time:           s.timeHist,
		CenterImpurity: s.centerHist,
		EdgeImpurity:   s.edgeHist,
		Turbulence:     s.turbHist,
		Pulses:         s.pulses,
		Steps:          s.step,
	}, nil
}

// Mode returns the current confinement mode.
func (s *State) Mode() Mode { return s.mode }

// CenterImpurity returns the current core impurity density.
func (s *State) CenterImpurity() float64 { return s.impurity[0] }

// Result holds the recorded signal histories of a completed run.
type Result struct {
	Time           []float64
	CenterImpurity []float64
	EdgeImpurity   []float64
	Turbulence     []float64
	Pulses         int
	Steps          int
}

// ErrNoHistory indicates a result with no recorded steps.
var ErrNoHistory = errors.New("sim: result has no recorded history")

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
