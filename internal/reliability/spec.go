// Part reliability parameters and the Weibull-like hazard model.
package reliability

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfiguration marks invalid reliability or timing parameters.
// It is returned from constructors only; simulation never starts with
// parameters that would make the hazard computation leave [0,1].
var ErrConfiguration = errors.New("invalid configuration")

// MinutesPerDay converts sampling frequency into hazard time units.
const MinutesPerDay = 1440.0

// PartSpec holds the static reliability parameters of one part kind.
// Specs are immutable and shared across wagons; mutable lifecycle data
// lives in PartState.
type PartSpec struct {
	Name         string  `json:"name"`
	Lambda0      float64 `json:"lambda0"`       // base hazard, failures/day
	LifetimeDays float64 `json:"lifetime_days"` // scales hazard growth
	Beta         float64 `json:"beta"`          // shape exponent; >1 = accelerating aging
}

// Validate checks the spec parameters.
func (s PartSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: part spec has no name", ErrConfiguration)
	}
	if s.Lambda0 < 0 {
		return fmt.Errorf("%w: part %q: lambda0 %v < 0", ErrConfiguration, s.Name, s.Lambda0)
	}
	if s.LifetimeDays <= 0 {
		return fmt.Errorf("%w: part %q: lifetime %v <= 0", ErrConfiguration, s.Name, s.LifetimeDays)
	}
	if s.Beta <= 0 {
		return fmt.Errorf("%w: part %q: beta %v <= 0", ErrConfiguration, s.Name, s.Beta)
	}
	return nil
}

// HazardModel converts part age into a per-step failure probability for a
// fixed sampling frequency.
type HazardModel struct {
	dtDays float64
}

// NewHazardModel creates a hazard model for the given sampling frequency.
func NewHazardModel(freqMinutes int) (*HazardModel, error) {
	if freqMinutes <= 0 {
		return nil, fmt.Errorf("%w: freq_minutes %d <= 0", ErrConfiguration, freqMinutes)
	}
	return &HazardModel{dtDays: float64(freqMinutes) / MinutesPerDay}, nil
}

// ProbabilityOfFailure returns the probability that a part with the given
// spec and age fails within one timestep.
//
// The instantaneous hazard lam = lambda0 * (1 + age/lifetime)^beta grows
// without bound as the part ages, so the per-step probability uses the
// exact exponential form p = 1 - exp(-lam*dt), which stays in [0,1] for
// any age. Non-decreasing in age for beta > 0.
func (h *HazardModel) ProbabilityOfFailure(spec PartSpec, ageDays float64) float64 {
	if ageDays < 0 {
		ageDays = 0
	}
	lam := spec.Lambda0 * math.Pow(1+ageDays/spec.LifetimeDays, spec.Beta)
	return 1 - math.Exp(-lam*h.dtDays)
}
