package fleet

import (
	"context"
	"math"
	"testing"
	"time"

	"wagonsim/internal/config"
	"wagonsim/internal/telemetry"
)

var fleetStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func fleetConfig() *config.SimulationConfig {
	return &config.SimulationConfig{
		FleetID:           "fleet-01",
		Seed:              42,
		Hours:             720,
		FreqMinutes:       30,
		Workers:           4,
		MaxInitialAgeDays: 365,
		WagonTypes: []config.WagonType{
			{Name: "Boxcar", Count: 2, LambdaBase: 0.0005},
			{Name: "Tank Car", Count: 3, LambdaBase: 0.0012},
		},
		Parts: []config.Part{
			{Name: "brakes", Lambda0: 0.0003, LifetimeDays: 800, Beta: 2.0},
			{Name: "axle", Lambda0: 0.0002, LifetimeDays: 1200, Beta: 1.8},
			{Name: "battery", Lambda0: 0.0001, LifetimeDays: 600, Beta: 2.2},
			{Name: "cooling", Lambda0: 0.0004, LifetimeDays: 500, Beta: 2.5},
		},
		Sensors: telemetry.DefaultSensorConfig(),
	}
}

func TestNewValidatorRejectsInvalidConfig(t *testing.T) {
	cfg := fleetConfig()
	cfg.WagonTypes = nil
	if _, err := NewValidator(cfg, fleetStart); err == nil {
		t.Fatal("expected error for empty fleet")
	}

	cfg = fleetConfig()
	cfg.Parts[0].Beta = -1
	if _, err := NewValidator(cfg, fleetStart); err == nil {
		t.Fatal("expected error for invalid part parameters")
	}
}

func TestWagonsDeterministicPopulation(t *testing.T) {
	cfg := fleetConfig()
	v, err := NewValidator(cfg, fleetStart)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	a := v.Wagons()
	b := v.Wagons()
	if len(a) != 5 {
		t.Fatalf("fleet size %d, want 5", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("wagon %d differs between builds: %+v vs %+v", i, a[i], b[i])
		}
	}
	for i, w := range a {
		ageYears := fleetStart.Sub(w.ManufactureDate).Hours() / 24 / 365.25
		if ageYears < 4.5 || ageYears > 30.5 {
			t.Errorf("wagon %d age %.1f years outside 5..30", i, ageYears)
		}
		if w.CapacityTons < 20 || w.CapacityTons > 120 {
			t.Errorf("wagon %d capacity %d outside 20..120", i, w.CapacityTons)
		}
		if w.LengthM < 8 || w.LengthM > 25 {
			t.Errorf("wagon %d length %.1f outside 8..25", i, w.LengthM)
		}
		if len(w.ID) != 12 || w.ID[:4] != "WGN-" {
			t.Errorf("wagon %d has malformed ID %q", i, w.ID)
		}
	}
	if a[0].Type != "Boxcar" || a[2].Type != "Tank Car" {
		t.Errorf("types not in configuration order: %s, %s", a[0].Type, a[2].Type)
	}
}

func TestRunExpectedFailures(t *testing.T) {
	cfg := fleetConfig()
	v, err := NewValidator(cfg, fleetStart)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	report, runs, err := v.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Steps != 1440 {
		t.Errorf("steps = %d, want 1440", report.Steps)
	}
	// 2 wagons * 1440 steps * 0.0005 and 3 * 1440 * 0.0012
	box := report.Types["Boxcar"]
	if math.Abs(box.ExpectedFailures-1.44) > 1e-12 {
		t.Errorf("Boxcar expected = %v, want 1.44", box.ExpectedFailures)
	}
	tank := report.Types["Tank Car"]
	if math.Abs(tank.ExpectedFailures-5.184) > 1e-12 {
		t.Errorf("Tank Car expected = %v, want 5.184", tank.ExpectedFailures)
	}

	if len(runs) != 5 {
		t.Fatalf("got %d runs, want 5", len(runs))
	}
	observed := map[string]int{}
	for _, run := range runs {
		if len(run.Series) != 1440 {
			t.Fatalf("wagon %s series length %d, want 1440", run.Wagon.ID, len(run.Series))
		}
		observed[run.Wagon.Type] += len(run.Failures)
	}
	if box.ObservedFailures != observed["Boxcar"] {
		t.Errorf("Boxcar observed = %d, logs say %d", box.ObservedFailures, observed["Boxcar"])
	}
	if tank.ObservedFailures != observed["Tank Car"] {
		t.Errorf("Tank Car observed = %d, logs say %d", tank.ObservedFailures, observed["Tank Car"])
	}

	wantAbs := math.Abs(float64(box.ObservedFailures) - box.ExpectedFailures)
	if math.Abs(box.AbsDeviation-wantAbs) > 1e-12 {
		t.Errorf("Boxcar abs deviation = %v, want %v", box.AbsDeviation, wantAbs)
	}
	if math.Abs(box.RelDeviation-wantAbs/1.44) > 1e-12 {
		t.Errorf("Boxcar rel deviation = %v, want %v", box.RelDeviation, wantAbs/1.44)
	}
}

func TestRunDeterministicAcrossSchedules(t *testing.T) {
	runOnce := func(workers int) ([]telemetry.SensorRow, *Report) {
		cfg := fleetConfig()
		cfg.Workers = workers
		v, err := NewValidator(cfg, fleetStart)
		if err != nil {
			t.Fatalf("NewValidator: %v", err)
		}
		report, runs, err := v.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		var all []telemetry.SensorRow
		for _, r := range runs {
			all = append(all, r.Series...)
		}
		return all, report
	}

	serial, serialReport := runOnce(1)
	parallel, parallelReport := runOnce(8)
	if len(serial) != len(parallel) {
		t.Fatalf("row counts differ: %d vs %d", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("row %d differs between worker counts", i)
		}
	}
	for name, tr := range serialReport.Types {
		if parallelReport.Types[name] != tr {
			t.Fatalf("type %s report differs: %+v vs %+v", name, tr, parallelReport.Types[name])
		}
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := fleetConfig()
	v, err := NewValidator(cfg, fleetStart)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := v.Run(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestReportRowsOrder(t *testing.T) {
	cfg := fleetConfig()
	v, err := NewValidator(cfg, fleetStart)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	report, _, err := v.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	names := report.TypeNames()
	if len(names) != 2 || names[0] != "Boxcar" || names[1] != "Tank Car" {
		t.Fatalf("type order %v, want [Boxcar, Tank Car]", names)
	}
	rows := report.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].WagonType != "Boxcar" || rows[1].WagonType != "Tank Car" {
		t.Fatalf("row order %s, %s", rows[0].WagonType, rows[1].WagonType)
	}
	if rows[1].WagonCount != 3 || math.Abs(rows[1].ExpectedFailures-5.184) > 1e-12 {
		t.Fatalf("Tank Car row mismatch: %+v", rows[1])
	}
}
