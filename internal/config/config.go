// Package config provides unified configuration loading for pulsereport.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/stellalab/pulsereport/internal/chart"
	"github.com/stellalab/pulsereport/internal/sim"
)

// Config contains all pulsereport settings.
type Config struct {
	// Pulse contains settings for pulse-interval detection.
	Pulse PulseConfig `yaml:"pulse"`

	// Sim contains the simulation parameter set.
	Sim sim.Params `yaml:"sim"`

	// Chart contains chart dimensions and overlay levels.
	Chart chart.Config `yaml:"chart"`

	// Output contains artifact paths.
	Output OutputConfig `yaml:"output"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `yaml:"logging"`
}

// PulseConfig configures pulse-interval detection.
type PulseConfig struct {
	// Threshold is the turbulence level above which a sample counts as an
	// active control pulse (m²/s).
	Threshold float64 `yaml:"threshold"`
}

// OutputConfig holds the artifact paths for a run.
type OutputConfig struct {
	// ResultsCSV is where the simulator writes the results table.
	ResultsCSV string `yaml:"results_csv"`

	// ChartSVG is where the report writes the chart.
	ChartSVG string `yaml:"chart_svg"`

	// DataDir holds the run-history database and decision logs.
	DataDir string `yaml:"data_dir"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default) or "debug".
	// "debug" enables decision logging to <data_dir>/decisions.jsonl.
	Level string `yaml:"level"`
}

// Default returns a Config with the tuned defaults.
func Default() *Config {
	return &Config{
		Pulse:  PulseConfig{Threshold: 10.0},
		Sim:    sim.DefaultParams(),
		Chart:  chart.DefaultConfig(),
		Output: OutputConfig{
			ResultsCSV: "w7x_simulation.csv",
			ChartSVG:   "w7x_control_results.svg",
			DataDir:    ".pulsereport",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load loads configuration from defaults, an optional config file, and
// environment variables, in that order. If path is empty, the default
// location ~/.pulsereport/config.yaml is used when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".pulsereport", "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file, over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies PULSEREPORT_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PULSEREPORT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PULSEREPORT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pulse.Threshold = f
		}
	}
	if v := os.Getenv("PULSEREPORT_DATA_DIR"); v != "" {
		cfg.Output.DataDir = v
	}
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	if c.Pulse.Threshold <= 0 {
		return fmt.Errorf("config: pulse.threshold must be positive, got %g", c.Pulse.Threshold)
	}
	if c.Output.ResultsCSV == "" {
		return fmt.Errorf("config: output.results_csv must not be empty")
	}
	if c.Output.ChartSVG == "" {
		return fmt.Errorf("config: output.chart_svg must not be empty")
	}
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	return nil
}
