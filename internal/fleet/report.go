package fleet

import (
	"time"

	"wagonsim/internal/telemetry"
)

// TypeReport compares expected and observed failure counts for one wagon
// type. ExpectedFailures uses the base-rate-only closed form
// wagons * steps * lambdaBase: it deliberately ignores the per-part aging
// hazard the simulation itself applies, serving as a rough sanity check
// rather than a precise expectation. No pass/fail threshold is applied;
// callers decide what deviation is acceptable.
type TypeReport struct {
	WagonCount       int     `json:"wagon_count"`
	ExpectedFailures float64 `json:"expected_failures"`
	ObservedFailures int     `json:"observed_failures"`
	AbsDeviation     float64 `json:"abs_deviation"`
	RelDeviation     float64 `json:"rel_deviation"`
}

// Report is the fleet-level validation result, read-only once built.
type Report struct {
	FleetID   string                `json:"fleet_id"`
	Steps     int                   `json:"steps"`
	Timestamp time.Time             `json:"ts"`
	Types     map[string]TypeReport `json:"types"`

	order []string
}

// TypeNames returns the wagon types in configuration order.
func (r *Report) TypeNames() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Rows flattens the report for row-oriented writers, in configuration
// order.
func (r *Report) Rows() []telemetry.ValidationRow {
	rows := make([]telemetry.ValidationRow, 0, len(r.order))
	for _, name := range r.order {
		tr := r.Types[name]
		rows = append(rows, telemetry.ValidationRow{
			FleetID:          r.FleetID,
			WagonType:        name,
			WagonCount:       tr.WagonCount,
			ExpectedFailures: tr.ExpectedFailures,
			ObservedFailures: tr.ObservedFailures,
			AbsDeviation:     tr.AbsDeviation,
			RelDeviation:     tr.RelDeviation,
			Timestamp:        r.Timestamp,
		})
	}
	return rows
}
