// Simulator driving one wagon's failure engine and sensor synthesis
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

// SensorWriter is an interface to support different output writers.
type SensorWriter interface {
	Write(telemetry.SensorRow) error
}

// FailureWriter handles failure events.
type FailureWriter interface {
	WriteFailure(reliability.FailureEvent) error
}

// ValidationWriter handles fleet validation report rows.
type ValidationWriter interface {
	WriteValidation(telemetry.ValidationRow) error
}

// MetadataWriter handles static wagon metadata.
type MetadataWriter interface {
	WriteMetadata(telemetry.Wagon) error
}

// Optional: writers can also support batch mode
type batchSensorWriter interface {
	WriteBatch([]telemetry.SensorRow) error
}

// Optional: failure writers may support batch mode
type batchFailureWriter interface {
	WriteFailures([]reliability.FailureEvent) error
}

// Optional: validation writers may support batch mode
type batchValidationWriter interface {
	WriteValidations([]telemetry.ValidationRow) error
}

// RunConfig holds everything one wagon simulation needs.
type RunConfig struct {
	Start             time.Time
	Hours             int
	FreqMinutes       int
	MaxInitialAgeDays int
	Parts             []reliability.PartSpec
	Sensors           telemetry.SensorConfig
}

// Steps returns the timestep count, rejecting non-divisible horizons.
func (c RunConfig) Steps() (int, error) {
	if c.FreqMinutes <= 0 {
		return 0, fmt.Errorf("%w: freq_minutes %d <= 0", reliability.ErrConfiguration, c.FreqMinutes)
	}
	if c.Hours <= 0 || (c.Hours*60)%c.FreqMinutes != 0 {
		return 0, fmt.Errorf("%w: hours=%d freq_minutes=%d does not yield a positive whole step count",
			reliability.ErrConfiguration, c.Hours, c.FreqMinutes)
	}
	return c.Hours * 60 / c.FreqMinutes, nil
}

// WagonRun bundles one wagon's simulation outputs.
type WagonRun struct {
	Wagon    telemetry.Wagon
	Series   []telemetry.SensorRow
	Failures []reliability.FailureEvent
}

// WagonSimulator drives a single wagon across the simulation horizon. Each
// simulator owns its part states, synthesizer, and random source, so wagons
// can run concurrently without shared state.
type WagonSimulator struct {
	wagon telemetry.Wagon
	eng   *reliability.Engine
	synth *telemetry.Synthesizer
	start time.Time
	freq  time.Duration
	steps int
}

// NewWagonSimulator validates the run config and builds the per-wagon
// engine and synthesizer on the given random source.
func NewWagonSimulator(fleetID string, wagon telemetry.Wagon, cfg RunConfig, rng *rand.Rand) (*WagonSimulator, error) {
	steps, err := cfg.Steps()
	if err != nil {
		return nil, err
	}
	eng, err := reliability.NewEngine(cfg.Parts, cfg.FreqMinutes, cfg.Start, cfg.MaxInitialAgeDays, rng)
	if err != nil {
		return nil, err
	}
	synth, err := telemetry.NewSynthesizer(fleetID, cfg.Sensors, rng)
	if err != nil {
		return nil, err
	}
	return &WagonSimulator{
		wagon: wagon,
		eng:   eng,
		synth: synth,
		start: cfg.Start,
		freq:  time.Duration(cfg.FreqMinutes) * time.Minute,
		steps: steps,
	}, nil
}

// Run simulates the full horizon and returns the sensor series plus the
// failure log sorted by start time.
func (s *WagonSimulator) Run() WagonRun {
	series := make([]telemetry.SensorRow, 0, s.steps)
	for i := 0; i < s.steps; i++ {
		now := s.start.Add(time.Duration(i) * s.freq)
		s.eng.Step(now)
		hs := telemetry.HealthState{
			InFailure:    s.eng.InFailure(),
			PartAges:     s.eng.Ages(now),
			WagonAgeDays: s.wagon.AgeDays(now),
		}
		series = append(series, s.synth.Reading(s.wagon, now, hs))
	}
	return WagonRun{
		Wagon:    s.wagon,
		Series:   series,
		Failures: s.eng.Failures(),
	}
}

// DominantFailure exposes which part currently drives the sensor signature.
func (s *WagonSimulator) DominantFailure() (string, bool) {
	return s.eng.DominantFailure()
}
