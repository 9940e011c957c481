// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

// WagonType defines one population group of the fleet.
type WagonType struct {
	Name       string  `yaml:"name"`
	Count      int     `yaml:"count"`
	LambdaBase float64 `yaml:"lambda_base"` // base failures/step, used for the expected-count check
}

// Part defines the reliability parameters of one part kind.
type Part struct {
	Name         string  `yaml:"name"`
	Lambda0      float64 `yaml:"lambda0"`
	LifetimeDays float64 `yaml:"lifetime_days"`
	Beta         float64 `yaml:"beta"`
}

// SimulationConfig is the root configuration for a fleet run.
type SimulationConfig struct {
	FleetID           string                 `yaml:"fleet_id"`
	Seed              int64                  `yaml:"seed"`
	Hours             int                    `yaml:"hours"`
	FreqMinutes       int                    `yaml:"freq_minutes"`
	Workers           int                    `yaml:"workers"`
	MaxInitialAgeDays int                    `yaml:"max_initial_age_days"`
	WagonTypes        []WagonType            `yaml:"wagon_types"`
	Parts             []Part                 `yaml:"parts"`
	Sensors           telemetry.SensorConfig `yaml:"sensors"`
}

// PartSpecs converts the configured parts into reliability specs.
func (c *SimulationConfig) PartSpecs() []reliability.PartSpec {
	specs := make([]reliability.PartSpec, len(c.Parts))
	for i, p := range c.Parts {
		specs[i] = reliability.PartSpec{
			Name:         p.Name,
			Lambda0:      p.Lambda0,
			LifetimeDays: p.LifetimeDays,
			Beta:         p.Beta,
		}
	}
	return specs
}

// Steps returns the number of timesteps for the configured horizon.
// Non-divisible hour/frequency combinations are rejected, never truncated.
func (c *SimulationConfig) Steps() (int, error) {
	if c.FreqMinutes <= 0 {
		return 0, fmt.Errorf("%w: freq_minutes %d <= 0", reliability.ErrConfiguration, c.FreqMinutes)
	}
	total := c.Hours * 60
	if c.Hours <= 0 || total%c.FreqMinutes != 0 {
		return 0, fmt.Errorf("%w: hours=%d freq_minutes=%d does not yield a positive whole step count",
			reliability.ErrConfiguration, c.Hours, c.FreqMinutes)
	}
	return total / c.FreqMinutes, nil
}

// Validate checks the fleet-level invariants. Numeric part and sensor
// parameters are re-checked by the constructors that consume them.
func (c *SimulationConfig) Validate() error {
	if _, err := c.Steps(); err != nil {
		return err
	}
	if len(c.WagonTypes) == 0 {
		return fmt.Errorf("%w: empty fleet specification", reliability.ErrConfiguration)
	}
	for _, wt := range c.WagonTypes {
		if wt.Name == "" {
			return fmt.Errorf("%w: wagon type without name", reliability.ErrConfiguration)
		}
		if wt.Count <= 0 {
			return fmt.Errorf("%w: wagon type %q: count %d <= 0", reliability.ErrConfiguration, wt.Name, wt.Count)
		}
		if wt.LambdaBase < 0 {
			return fmt.Errorf("%w: wagon type %q: lambda_base %v < 0", reliability.ErrConfiguration, wt.Name, wt.LambdaBase)
		}
	}
	if len(c.Parts) == 0 {
		return fmt.Errorf("%w: no parts configured", reliability.ErrConfiguration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d < 0", reliability.ErrConfiguration, c.Workers)
	}
	if c.MaxInitialAgeDays < 0 {
		return fmt.Errorf("%w: max_initial_age_days %d < 0", reliability.ErrConfiguration, c.MaxInitialAgeDays)
	}
	return nil
}

// Load loads YAML config, validates it against a CUE schema, and applies
// defaults for omitted sections.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SimulationConfig) applyDefaults() {
	if c.FleetID == "" {
		c.FleetID = "fleet-01"
	}
	if c.MaxInitialAgeDays == 0 {
		c.MaxInitialAgeDays = 365
	}
	if c.Sensors == (telemetry.SensorConfig{}) {
		c.Sensors = telemetry.DefaultSensorConfig()
	}
}
