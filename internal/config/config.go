// Package config defines the simulation configuration surface and loads it
// from YAML. Absent keys keep their defaults, so a config file only needs
// the values it overrides.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// SurgeWindow is an inclusive tick range with elevated rider arrivals.
type SurgeWindow struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Config holds every recognized simulation option.
type Config struct {
	// Structural limits.
	GridSize          int   `yaml:"grid_size" json:"grid_size"`
	Ticks             int   `yaml:"ticks" json:"ticks"`
	Seed              int64 `yaml:"seed" json:"seed"`
	MaxRidersPerCell  int   `yaml:"max_riders_per_cell" json:"max_riders_per_cell"`
	MaxDriversPerCell int   `yaml:"max_drivers_per_cell" json:"max_drivers_per_cell"`

	// Rider arrival intensity.
	BaseRiderRate float64       `yaml:"base_rider_rate" json:"base_rider_rate"`
	SurgeWindows  []SurgeWindow `yaml:"surge_windows" json:"surge_windows"`
	SurgeRate     float64       `yaml:"surge_rate" json:"surge_rate"`

	// Driver arrival intensity.
	DriverBaseRate         float64 `yaml:"driver_base_rate" json:"driver_base_rate"`
	DriverSpawnSensitivity float64 `yaml:"driver_spawn_sensitivity" json:"driver_spawn_sensitivity"`
	MaxPoissonMean         float64 `yaml:"max_poisson_mean" json:"max_poisson_mean"`

	// Price elasticity.
	BasePrice            float64 `yaml:"base_price" json:"base_price"`
	RiderBidSensitivity  float64 `yaml:"rider_bid_sensitivity" json:"rider_bid_sensitivity"`
	DriverAskSensitivity float64 `yaml:"driver_ask_sensitivity" json:"driver_ask_sensitivity"`
	BidFloor             float64 `yaml:"bid_floor" json:"bid_floor"`
	AskFloor             float64 `yaml:"ask_floor" json:"ask_floor"`

	// Matching locality and lifecycle.
	DistanceDecay   float64 `yaml:"distance_decay" json:"distance_decay"`
	PressureEpsilon float64 `yaml:"pressure_epsilon" json:"pressure_epsilon"`
	MaxWait         int     `yaml:"max_wait" json:"max_wait"`
}

// Default returns the baseline configuration: a 5×5 grid over 500 ticks
// with three surge windows.
func Default() Config {
	return Config{
		GridSize:          5,
		Ticks:             500,
		Seed:              42,
		MaxRidersPerCell:  10,
		MaxDriversPerCell: 10,

		BaseRiderRate: 0.05,
		SurgeWindows: []SurgeWindow{
			{Start: 50, End: 100},
			{Start: 200, End: 230},
			{Start: 350, End: 380},
		},
		SurgeRate: 0.5,

		DriverBaseRate:         0.2,
		DriverSpawnSensitivity: 0.8,
		MaxPoissonMean:         5.0,

		BasePrice:            1.5,
		RiderBidSensitivity:  0.5,
		DriverAskSensitivity: 0.5,
		BidFloor:             0.3,
		AskFloor:             0.2,

		DistanceDecay:   0.1,
		PressureEpsilon: 1.0,
		MaxWait:         7,
	}
}

// Load reads a YAML config file, overlaying it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.GridSize < 0 {
		return fmt.Errorf("grid_size must be >= 0, got %d", c.GridSize)
	}
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must be >= 0, got %d", c.Ticks)
	}
	if c.MaxRidersPerCell < 0 || c.MaxDriversPerCell < 0 {
		return fmt.Errorf("per-cell caps must be >= 0")
	}
	if c.BaseRiderRate < 0 || c.SurgeRate < 0 || c.DriverBaseRate < 0 {
		return fmt.Errorf("arrival rates must be >= 0")
	}
	if c.MaxPoissonMean <= 0 {
		return fmt.Errorf("max_poisson_mean must be > 0, got %g", c.MaxPoissonMean)
	}
	if c.BasePrice <= 0 {
		return fmt.Errorf("base_price must be > 0, got %g", c.BasePrice)
	}
	if c.BidFloor <= 0 || c.AskFloor <= 0 {
		return fmt.Errorf("price floors must be > 0")
	}
	if c.PressureEpsilon <= 0 {
		return fmt.Errorf("pressure_epsilon must be > 0, got %g", c.PressureEpsilon)
	}
	if c.MaxWait < 1 {
		return fmt.Errorf("max_wait must be >= 1, got %d", c.MaxWait)
	}
	for _, w := range c.SurgeWindows {
		if w.Start > w.End {
			return fmt.Errorf("surge window [%d, %d] has start after end", w.Start, w.End)
		}
	}
	return nil
}

// SurgeBoost returns the additional rider arrival rate at the given tick,
// summing the increment of every surge window containing it.
func (c Config) SurgeBoost(tick int) float64 {
	boost := 0.0
	for _, w := range c.SurgeWindows {
		if tick >= w.Start && tick <= w.End {
			boost += c.SurgeRate
		}
	}
	return boost
}
