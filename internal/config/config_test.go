package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wagonsim/internal/reliability"
)

const testSchema = "../../schemas/simulation.cue"

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulation.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeTemp(t, `
fleet_id: fleet-x
seed: 7
hours: 720
freq_minutes: 30
wagon_types:
  - name: Boxcar
    count: 2
    lambda_base: 0.0005
parts:
  - name: brakes
    lambda0: 0.0003
    lifetime_days: 800
    beta: 2.0
`)
	cfg, err := Load(path, testSchema)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.FleetID != "fleet-x" || cfg.Seed != 7 {
		t.Errorf("unexpected identity: %+v", cfg)
	}
	if len(cfg.WagonTypes) != 1 || cfg.WagonTypes[0].Name != "Boxcar" {
		t.Errorf("unexpected wagon types: %+v", cfg.WagonTypes)
	}
	steps, err := cfg.Steps()
	if err != nil {
		t.Fatalf("Steps() returned error: %v", err)
	}
	if steps != 1440 {
		t.Errorf("steps = %d, want 1440", steps)
	}
	// Omitted sensor section falls back to the default tables.
	if cfg.Sensors.Speed.Baseline != 60 {
		t.Errorf("expected default sensor tables, got %+v", cfg.Sensors)
	}
	specs := cfg.PartSpecs()
	if len(specs) != 1 || specs[0].Name != "brakes" || specs[0].Beta != 2.0 {
		t.Errorf("unexpected part specs: %+v", specs)
	}
}

func TestLoadConfig_SchemaRejectsNegativeRate(t *testing.T) {
	path := writeTemp(t, `
hours: 720
freq_minutes: 30
wagon_types:
  - name: Boxcar
    count: 2
    lambda_base: -1.0
parts:
  - name: brakes
    lambda0: 0.0003
    lifetime_days: 800
    beta: 2.0
`)
	if _, err := Load(path, testSchema); err == nil {
		t.Fatal("expected CUE validation failure for negative lambda_base")
	}
}

func TestSteps_NonDivisible(t *testing.T) {
	cfg := &SimulationConfig{Hours: 1, FreqMinutes: 7}
	if _, err := cfg.Steps(); !errors.Is(err, reliability.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for 60%%7 != 0, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *SimulationConfig {
		return &SimulationConfig{
			Hours:       720,
			FreqMinutes: 30,
			WagonTypes:  []WagonType{{Name: "Boxcar", Count: 2, LambdaBase: 0.0005}},
			Parts:       []Part{{Name: "brakes", Lambda0: 0.0003, LifetimeDays: 800, Beta: 2}},
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*SimulationConfig){
		"empty fleet":    func(c *SimulationConfig) { c.WagonTypes = nil },
		"zero count":     func(c *SimulationConfig) { c.WagonTypes[0].Count = 0 },
		"unnamed type":   func(c *SimulationConfig) { c.WagonTypes[0].Name = "" },
		"negative base":  func(c *SimulationConfig) { c.WagonTypes[0].LambdaBase = -0.1 },
		"no parts":       func(c *SimulationConfig) { c.Parts = nil },
		"zero freq":      func(c *SimulationConfig) { c.FreqMinutes = 0 },
		"zero hours":     func(c *SimulationConfig) { c.Hours = 0 },
		"neg workers":    func(c *SimulationConfig) { c.Workers = -1 },
		"neg initial":    func(c *SimulationConfig) { c.MaxInitialAgeDays = -1 },
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, reliability.ErrConfiguration) {
			t.Errorf("%s: expected ErrConfiguration, got %v", name, err)
		}
	}
}
