package telemetry

import (
	"fmt"
	"math/rand"
	"time"

	"wagonsim/internal/reliability"
)

// Channel configures one Gaussian sensor channel: healthy readings follow
// baseline + degradation*age + N(0, sigma), failure-mode readings follow
// N(failMean, failSigma) with the degradation term suspended.
type Channel struct {
	Baseline          float64 `yaml:"baseline" json:"baseline"`
	DegradationPerDay float64 `yaml:"degradation_per_day" json:"degradation_per_day"`
	Sigma             float64 `yaml:"sigma" json:"sigma"`
	FailMean          float64 `yaml:"fail_mean" json:"fail_mean"`
	FailSigma         float64 `yaml:"fail_sigma" json:"fail_sigma"`
	AgePart           string  `yaml:"age_part" json:"age_part"` // part whose age drives degradation; empty = wagon age
}

// SensorConfig holds the per-channel tables for the synthesizer. Battery is
// not Gaussian: it declines monotonically by a uniform step, faster while
// the wagon is in failure.
type SensorConfig struct {
	Speed     Channel `yaml:"speed" json:"speed"`
	Brake     Channel `yaml:"brake" json:"brake"`
	AxleTemp  Channel `yaml:"axle_temp" json:"axle_temp"`
	Vibration Channel `yaml:"vibration" json:"vibration"`

	BatteryStart        float64 `yaml:"battery_start" json:"battery_start"`
	BatteryDrainMin     float64 `yaml:"battery_drain_min" json:"battery_drain_min"`
	BatteryDrainMax     float64 `yaml:"battery_drain_max" json:"battery_drain_max"`
	BatteryFailDrainMin float64 `yaml:"battery_fail_drain_min" json:"battery_fail_drain_min"`
	BatteryFailDrainMax float64 `yaml:"battery_fail_drain_max" json:"battery_fail_drain_max"`
}

// DefaultSensorConfig returns the stock sensor tables: speed ~N(60,5) km/h,
// brake ~N(5,0.5) bar, axle temperature ~N(40,5) °C, vibration ~N(2,0.5) g,
// battery starting at 100% with a 0.01–0.05%/step decline. Failure modes:
// speed collapses to 0, brake spikes to N(1,0.3), temperature N(80,10),
// vibration N(10,5), battery drains 0.2–0.5%/step.
func DefaultSensorConfig() SensorConfig {
	return SensorConfig{
		Speed:     Channel{Baseline: 60, Sigma: 5, FailMean: 0, FailSigma: 0},
		Brake:     Channel{Baseline: 5, Sigma: 0.5, FailMean: 1, FailSigma: 0.3, AgePart: "brakes"},
		AxleTemp:  Channel{Baseline: 40, Sigma: 5, FailMean: 80, FailSigma: 10, AgePart: "axle"},
		Vibration: Channel{Baseline: 2, Sigma: 0.5, FailMean: 10, FailSigma: 5, AgePart: "axle"},

		BatteryStart:        100,
		BatteryDrainMin:     0.01,
		BatteryDrainMax:     0.05,
		BatteryFailDrainMin: 0.2,
		BatteryFailDrainMax: 0.5,
	}
}

// Validate checks the sensor tables.
func (c SensorConfig) Validate() error {
	for name, ch := range map[string]Channel{
		"speed": c.Speed, "brake": c.Brake, "axle_temp": c.AxleTemp, "vibration": c.Vibration,
	} {
		if ch.Sigma < 0 || ch.FailSigma < 0 {
			return fmt.Errorf("%w: channel %s: negative sigma", reliability.ErrConfiguration, name)
		}
	}
	if c.BatteryStart < 0 || c.BatteryStart > 100 {
		return fmt.Errorf("%w: battery_start %v outside [0,100]", reliability.ErrConfiguration, c.BatteryStart)
	}
	for _, pair := range [][2]float64{
		{c.BatteryDrainMin, c.BatteryDrainMax},
		{c.BatteryFailDrainMin, c.BatteryFailDrainMax},
	} {
		if pair[0] < 0 || pair[1] < pair[0] {
			return fmt.Errorf("%w: battery drain range [%v,%v]", reliability.ErrConfiguration, pair[0], pair[1])
		}
	}
	return nil
}

// HealthState is the failure-relevant view of a wagon at one timestep.
type HealthState struct {
	InFailure    bool
	PartAges     map[string]float64 // age in days per part kind
	WagonAgeDays float64
}

// Synthesizer maps wagon health state to one sensor reading per timestep.
// One synthesizer serves one wagon: it carries the battery level between
// steps and draws all noise from the wagon's seeded source in a fixed
// channel order (speed, brake, axle temperature, vibration, battery), so
// series replay exactly for a given seed.
type Synthesizer struct {
	fleetID string
	cfg     SensorConfig
	rng     *rand.Rand
	battery float64
}

// NewSynthesizer creates a synthesizer for one wagon.
func NewSynthesizer(fleetID string, cfg SensorConfig, rng *rand.Rand) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Synthesizer{fleetID: fleetID, cfg: cfg, rng: rng, battery: cfg.BatteryStart}, nil
}

// Reading produces the sensor row for one timestep.
func (s *Synthesizer) Reading(w Wagon, ts time.Time, hs HealthState) SensorRow {
	row := SensorRow{
		FleetID:   s.fleetID,
		WagonID:   w.ID,
		WagonType: w.Type,
		Failure:   hs.InFailure,
		Timestamp: ts,
	}
	row.SpeedKmh = s.sample(s.cfg.Speed, hs)
	row.BrakeBar = s.sample(s.cfg.Brake, hs)
	row.AxleTempC = s.sample(s.cfg.AxleTemp, hs)
	row.VibrationG = s.sample(s.cfg.Vibration, hs)

	drainMin, drainMax := s.cfg.BatteryDrainMin, s.cfg.BatteryDrainMax
	if hs.InFailure {
		drainMin, drainMax = s.cfg.BatteryFailDrainMin, s.cfg.BatteryFailDrainMax
	}
	s.battery -= drainMin + s.rng.Float64()*(drainMax-drainMin)
	s.battery = clamp(s.battery, 0, 100)
	row.BatteryPct = s.battery
	return row
}

func (s *Synthesizer) sample(ch Channel, hs HealthState) float64 {
	if hs.InFailure {
		return clamp(ch.FailMean+s.rng.NormFloat64()*ch.FailSigma, 0, maxReading)
	}
	age := hs.WagonAgeDays
	if ch.AgePart != "" {
		if a, ok := hs.PartAges[ch.AgePart]; ok {
			age = a
		}
	}
	v := ch.Baseline + ch.DegradationPerDay*age + s.rng.NormFloat64()*ch.Sigma
	return clamp(v, 0, maxReading)
}

// maxReading is a generous physical ceiling shared by all Gaussian channels.
const maxReading = 1e6

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
