package reliability

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Repair durations are drawn uniformly from [RepairStepsMin, RepairStepsMax]
// timesteps, inclusive.
const (
	RepairStepsMin = 3
	RepairStepsMax = 20
)

// FailureEvent records one completed failure/repair cycle of a part.
// Events are immutable once appended to a part's history.
type FailureEvent struct {
	ID              string    `json:"failure_id"`
	Part            string    `json:"part_name"`
	StartTime       time.Time `json:"start_time"`
	RepairTime      time.Time `json:"repair_time"`
	DowntimeMinutes int       `json:"downtime_minutes"`
	Cause           string    `json:"cause"`
}

// PartState is the mutable lifecycle of one part on one wagon. It is owned
// exclusively by that wagon's engine; nothing here is safe for concurrent
// use.
type PartState struct {
	Spec            PartSpec
	Healthy         bool
	LastReplacement time.Time
	Failures        []FailureEvent

	repairStepsLeft int
	pending         FailureEvent
}

// AgeDays returns the part age at the given time, measured since the last
// replacement.
func (p *PartState) AgeDays(now time.Time) float64 {
	age := now.Sub(p.LastReplacement).Minutes() / MinutesPerDay
	if age < 0 {
		return 0
	}
	return age
}

// Engine drives the per-part failure/repair state machine of one wagon.
//
// Each part is an independent two-state machine (Healthy, Repairing): a
// uniform draw below the hazard probability triggers a failure and
// schedules a repair R steps later; while repairing the hazard is not
// evaluated. The engine consumes its random source in a fixed order (parts
// in declaration order, one hazard draw per healthy part per step, plus
// one draw for the repair duration on failure), so runs with the same seed
// replay exactly.
type Engine struct {
	hazard *HazardModel
	freq   time.Duration
	parts  []*PartState
	rng    *rand.Rand
}

// NewEngine validates the part specs and builds the state machine for one
// wagon. maxInitialAgeDays > 0 gives each part a random pre-simulation age
// of up to that many days, drawn from rng; 0 starts every part factory-new.
func NewEngine(specs []PartSpec, freqMinutes int, start time.Time, maxInitialAgeDays int, rng *rand.Rand) (*Engine, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no part specs", ErrConfiguration)
	}
	if maxInitialAgeDays < 0 {
		return nil, fmt.Errorf("%w: max_initial_age_days %d < 0", ErrConfiguration, maxInitialAgeDays)
	}
	hazard, err := NewHazardModel(freqMinutes)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		hazard: hazard,
		freq:   time.Duration(freqMinutes) * time.Minute,
		rng:    rng,
	}
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: duplicate part %q", ErrConfiguration, spec.Name)
		}
		seen[spec.Name] = true
		replaced := start
		if maxInitialAgeDays > 0 {
			replaced = start.Add(-time.Duration(rng.Intn(maxInitialAgeDays)+1) * 24 * time.Hour)
		}
		e.parts = append(e.parts, &PartState{
			Spec:            spec,
			Healthy:         true,
			LastReplacement: replaced,
		})
	}
	return e, nil
}

// Step advances every part one timestep at the given simulation time.
func (e *Engine) Step(now time.Time) {
	for _, p := range e.parts {
		if !p.Healthy {
			p.repairStepsLeft--
			if p.repairStepsLeft > 0 {
				continue
			}
			// Repair done: finalize the event and reset part age.
			p.pending.RepairTime = now
			p.Failures = append(p.Failures, p.pending)
			p.pending = FailureEvent{}
			p.Healthy = true
			p.LastReplacement = now
			continue
		}
		prob := e.hazard.ProbabilityOfFailure(p.Spec, p.AgeDays(now))
		if e.rng.Float64() >= prob {
			continue
		}
		steps := e.rng.Intn(RepairStepsMax-RepairStepsMin+1) + RepairStepsMin
		p.Healthy = false
		p.repairStepsLeft = steps
		p.pending = FailureEvent{
			ID:              newEventID(e.rng),
			Part:            p.Spec.Name,
			StartTime:       now,
			DowntimeMinutes: steps * int(e.freq.Minutes()),
			Cause:           p.Spec.Name,
		}
	}
}

// InFailure reports whether any part of the wagon is currently repairing.
func (e *Engine) InFailure() bool {
	for _, p := range e.parts {
		if !p.Healthy {
			return true
		}
	}
	return false
}

// DominantFailure returns the part whose failure mode drives the sensor
// signature. When several parts are down at once the first one in
// declaration order wins; the model leaves simultaneous-failure
// composition open, so a fixed priority keeps runs reproducible.
func (e *Engine) DominantFailure() (string, bool) {
	for _, p := range e.parts {
		if !p.Healthy {
			return p.Spec.Name, true
		}
	}
	return "", false
}

// Ages returns the current age in days of every part, keyed by part name.
func (e *Engine) Ages(now time.Time) map[string]float64 {
	ages := make(map[string]float64, len(e.parts))
	for _, p := range e.parts {
		ages[p.Spec.Name] = p.AgeDays(now)
	}
	return ages
}

// Parts exposes the per-part state, in declaration order.
func (e *Engine) Parts() []*PartState {
	return e.parts
}

// Failures collects the completed failure history of all parts. The result
// is ordered by start time.
func (e *Engine) Failures() []FailureEvent {
	var all []FailureEvent
	for _, p := range e.parts {
		all = append(all, p.Failures...)
	}
	sortFailures(all)
	return all
}

// newEventID draws a UUID from the wagon's seeded source so failure logs
// replay byte-identically for a given seed.
func newEventID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func sortFailures(events []FailureEvent) {
	// Insertion sort: per-part histories are already chronological and
	// wagons rarely accumulate more than a handful of events.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].StartTime.Before(events[j-1].StartTime); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}
