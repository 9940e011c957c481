// Sensor and fleet row structs with greptime tags
package telemetry

import (
	"os"
	"time"
)

// SensorRow represents one multivariate sensor reading for GreptimeDB.
type SensorRow struct {
	FleetID    string    `json:"fleet_id"`    // TAG
	WagonID    string    `json:"wagon_id"`    // TAG
	WagonType  string    `json:"wagon_type"`  // TAG
	SpeedKmh   float64   `json:"speed_kmh"`   // FIELD
	BrakeBar   float64   `json:"brake_bar"`   // FIELD
	AxleTempC  float64   `json:"axle_temp_c"` // FIELD
	VibrationG float64   `json:"vibration_g"` // FIELD
	BatteryPct float64   `json:"battery_pct"` // FIELD
	Failure    bool      `json:"failure"`     // FIELD
	Timestamp  time.Time `json:"ts"`          // TIME INDEX
}

// SensorTableName holds the table name used when writing sensor rows to
// GreptimeDB. It defaults to "wagon_sensors" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var SensorTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "wagon_sensors"
}()

func (SensorRow) TableName() string {
	return SensorTableName
}

// Wagon holds the static identity of one simulated wagon. The mutable
// lifecycle (part states, sensor series) lives with the wagon's simulator.
type Wagon struct {
	ID              string    `json:"wagon_id"`
	Type            string    `json:"type"`
	CapacityTons    int       `json:"capacity_tons"`
	LengthM         float64   `json:"length_m"`
	ManufactureDate time.Time `json:"manufacture_date"`
}

// AgeDays returns the wagon age at the given time.
func (w Wagon) AgeDays(now time.Time) float64 {
	age := now.Sub(w.ManufactureDate).Hours() / 24
	if age < 0 {
		return 0
	}
	return age
}

// ValidationRow is the per-type line of a fleet validation report,
// flattened for row-oriented writers.
type ValidationRow struct {
	FleetID          string    `json:"fleet_id"`   // TAG
	WagonType        string    `json:"wagon_type"` // TAG
	WagonCount       int       `json:"wagon_count"`
	ExpectedFailures float64   `json:"expected_failures"`
	ObservedFailures int       `json:"observed_failures"`
	AbsDeviation     float64   `json:"abs_deviation"`
	RelDeviation     float64   `json:"rel_deviation"`
	Timestamp        time.Time `json:"ts"` // TIME INDEX
}
