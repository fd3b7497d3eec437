// Package chart renders the three-panel results chart (center impurity,
// edge impurity, turbulence) as an SVG document with threshold overlays and
// shaded control-pulse intervals.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/stellalab/pulsereport/internal/pulse"
	"github.com/stellalab/pulsereport/internal/series"
)

// Config holds chart dimensions and overlay levels.
type Config struct {
	// Width and Height are the SVG canvas size in pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Title is drawn above the first panel.
	Title string `yaml:"title"`

	// ImpurityThreshold is the dashed reference line on the center
	// impurity panel, in units of 10¹⁸ m⁻³.
	ImpurityThreshold float64 `yaml:"impurity_threshold"`

	// TurbulenceBaseline is the dashed reference line on the turbulence
	// panel, in m²/s.
	TurbulenceBaseline float64 `yaml:"turbulence_baseline"`
}

// DefaultConfig matches the original report figure.
func DefaultConfig() Config {
	return Config{
		Width:              1400,
		Height:             1000,
		Title:              "W7-X Adaptive Turbulence Control Simulation",
		ImpurityThreshold:  2.2,
		TurbulenceBaseline: 4.0,
	}
}

// densityScale converts impurity densities to display units of 10¹⁸ m⁻³.
const densityScale = 1e-18

// Canvas layout.
const (
	marginLeft   = 95
	marginRight  = 35
	marginTop    = 50
	marginBottom = 55
	panelGap     = 30
)

// panel is one chart row: a line series with optional reference line.
type panel struct {
	values    []float64 // already in display units
	color     string
	legend    string
	yLabel    string
	refLevel  float64
	refLabel  string
	refColor  string
	hasRef    bool
	showXAxis bool
}

// Render writes the chart for run, with pulses shaded across all panels,
// to w as an SVG document.
func Render(w io.Writer, run *series.Run, pulses []pulse.Interval, cfg Config) error {
	if err := run.Validate(); err != nil {
		return err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("chart: invalid canvas size %dx%d", cfg.Width, cfg.Height)
	}

	panels := []panel{
		{
			values: scaled(run.CenterImpurity, densityScale),
			color:  "#1f4fd8", legend: "Center",
			yLabel:   "Center n_Z (10¹⁸ m⁻³)",
			refLevel: cfg.ImpurityThreshold, refLabel: "Threshold", refColor: "#d62728", hasRef: true,
		},
		{
			values: scaled(run.EdgeImpurity, densityScale),
			color:  "#d62728", legend: "Edge",
			yLabel: "Edge n_Z (10¹⁸ m⁻³)",
		},
		{
			values: run.Turbulence,
			color:  "#2ca02c", legend: "Edge Turbulence",
			yLabel:   "Turbulence (m²/s)",
			refLevel: cfg.TurbulenceBaseline, refLabel: "Baseline", refColor: "#808080", hasRef: true,
			showXAxis: true,
		},
	}

	plotW := cfg.Width - marginLeft - marginRight
	panelH := (cfg.Height - marginTop - marginBottom - panelGap*(len(panels)-1)) / len(panels)
	if plotW < 50 || panelH < 50 {
		return fmt.Errorf("chart: canvas %dx%d too small for layout", cfg.Width, cfg.Height)
	}

	t0 := run.Time[0]
	t1 := run.Time[len(run.Time)-1]

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", cfg.Width, cfg.Height)
	if cfg.Title != "" {
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="sans-serif" font-size="18" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
			marginLeft+plotW/2, marginTop-18, escape(cfg.Title))
	}

	for i, p := range panels {
		top := marginTop + i*(panelH+panelGap)
		renderPanel(&b, run.Time, p, pulses, panelGeom{
			left: marginLeft, top: top, width: plotW, height: panelH,
			t0: t0, t1: t1,
		})
	}

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFile renders the chart to path atomically (temp file + rename).
func WriteFile(path string, run *series.Run, pulses []pulse.Interval, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating chart directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".chart-*.svg")
	if err != nil {
		return fmt.Errorf("creating temp chart file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Render(tmp, run, pulses, cfg); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing chart file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming chart into place: %w", err)
	}
	return nil
}

type panelGeom struct {
	left, top, width, height int
	t0, t1                   float64
}

func (g panelGeom) x(t float64) float64 {
	if g.t1 == g.t0 {
		return float64(g.left)
	}
	return float64(g.left) + (t-g.t0)/(g.t1-g.t0)*float64(g.width)
}

func renderPanel(b *strings.Builder, times []float64, p panel, pulses []pulse.Interval, g panelGeom) {
	yMin, yMax := valueRange(p)
	y := func(v float64) float64 {
		return float64(g.top) + float64(g.height) - (v-yMin)/(yMax-yMin)*float64(g.height)
	}

	// Panel frame and grid.
	fmt.Fprintf(b, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#999" stroke-width="1"/>`+"\n",
		g.left, g.top, g.width, g.height)
	ticks := tickLevels(yMin, yMax, 5)
	for _, tv := range ticks {
		ty := y(tv)
		fmt.Fprintf(b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#ccc" stroke-width="0.5" opacity="0.6"/>`+"\n",
			g.left, ty, g.left+g.width, ty)
		fmt.Fprintf(b, `<text x="%d" y="%.1f" font-family="sans-serif" font-size="11" text-anchor="end">%s</text>`+"\n",
			g.left-6, ty+4, formatTick(tv))
	}

	// Pulse interval shading, clipped to the time range.
	for _, iv := range pulses {
		x0 := g.x(math.Max(iv.Start, g.t0))
		x1 := g.x(math.Min(iv.End, g.t1))
		if x1 <= x0 {
			continue
		}
		fmt.Fprintf(b, `<rect x="%.1f" y="%d" width="%.1f" height="%d" fill="#ffd400" opacity="0.2"/>`+"\n",
			x0, g.top, x1-x0, g.height)
	}

	// Reference line.
	if p.hasRef {
		ry := y(p.refLevel)
		fmt.Fprintf(b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1.5" stroke-dasharray="6,4" opacity="0.6"/>`+"\n",
			g.left, ry, g.left+g.width, ry, p.refColor)
	}

	// Signal polyline, decimated so dense runs stay a sane document size.
	step := len(times) / (g.width * 2)
	if step < 1 {
		step = 1
	}
	var pts strings.Builder
	for i := 0; i < len(times); i += step {
		fmt.Fprintf(&pts, "%.1f,%.1f ", g.x(times[i]), y(p.values[i]))
	}
	if last := len(times) - 1; last%step != 0 {
		fmt.Fprintf(&pts, "%.1f,%.1f", g.x(times[last]), y(p.values[last]))
	}
	fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		strings.TrimSpace(pts.String()), p.color)

	// Legend, upper right.
	lx := g.left + g.width - 10
	fmt.Fprintf(b, `<text x="%d" y="%d" font-family="sans-serif" font-size="12" text-anchor="end" fill="%s">%s</text>`+"\n",
		lx, g.top+16, p.color, escape(p.legend))
	if p.hasRef {
		fmt.Fprintf(b, `<text x="%d" y="%d" font-family="sans-serif" font-size="12" text-anchor="end" fill="%s">%s</text>`+"\n",
			lx, g.top+32, p.refColor, escape(p.refLabel))
	}

	// Y-axis label.
	fmt.Fprintf(b, `<text x="%d" y="%d" font-family="sans-serif" font-size="12" text-anchor="middle" transform="rotate(-90 %d %d)">%s</text>`+"\n",
		g.left-70, g.top+g.height/2, g.left-70, g.top+g.height/2, escape(p.yLabel))

	// X axis on the bottom panel only.
	if p.showXAxis {
		for _, tv := range tickLevels(g.t0, g.t1, 6) {
			tx := g.x(tv)
			fmt.Fprintf(b, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#999" stroke-width="1"/>`+"\n",
				tx, g.top+g.height, tx, g.top+g.height+5)
			fmt.Fprintf(b, `<text x="%.1f" y="%d" font-family="sans-serif" font-size="11" text-anchor="middle">%s</text>`+"\n",
				tx, g.top+g.height+20, formatTick(tv))
		}
		fmt.Fprintf(b, `<text x="%d" y="%d" font-family="sans-serif" font-size="12" text-anchor="middle">Time (s)</text>`+"\n",
			g.left+g.width/2, g.top+g.height+40)
	}
}

// valueRange returns the padded y range covering the signal and any
// reference line. Degenerate (flat) signals get a unit range.
func valueRange(p panel) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range p.values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if p.hasRef {
		lo = math.Min(lo, p.refLevel)
		hi = math.Max(hi, p.refLevel)
	}
	if hi <= lo {
		return lo - 0.5, lo + 0.5
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// tickLevels returns n evenly spaced levels spanning [lo, hi].
func tickLevels(lo, hi float64, n int) []float64 {
	if n < 2 || hi <= lo {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func formatTick(v float64) string {
	if v != 0 && (math.Abs(v) >= 1e4 || math.Abs(v) < 1e-3) {
		return fmt.Sprintf("%.2e", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func scaled(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
