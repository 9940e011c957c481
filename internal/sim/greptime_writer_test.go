package sim

import (
	"context"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

type mockGreptimeClient struct {
	table *table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterSensorBatch(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []telemetry.SensorRow{
		{
			FleetID:   "fleet-01",
			WagonID:   "WGN-1",
			WagonType: "Boxcar",
			SpeedKmh:  61.5,
			BrakeBar:  5.1,
			AxleTempC: 40.2,
			Failure:   true,
			Timestamp: ts,
		},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, sensorTable: "wagon_sensors"}

	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	schema := m.table.GetRows().Schema
	if len(schema) != 10 {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}
	if schema[0].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("fleet_id semantic type = %v, want TAG", schema[0].SemanticType)
	}
	if schema[8].Datatype != gpb.ColumnDataType_BOOLEAN {
		t.Fatalf("failure column type = %v, want %v", schema[8].Datatype, gpb.ColumnDataType_BOOLEAN)
	}

	vals := m.table.GetRows().Rows[0].Values
	if got := vals[1].GetStringValue(); got != "WGN-1" {
		t.Fatalf("wagon_id = %s, want WGN-1", got)
	}
	if !vals[8].GetBoolValue() {
		t.Fatalf("failure flag not preserved")
	}
}

func TestGreptimeWriterFailures(t *testing.T) {
	start := time.Unix(0, 0).UTC()
	events := []reliability.FailureEvent{{
		ID:              "f1",
		Part:            "brakes",
		StartTime:       start,
		RepairTime:      start.Add(3 * time.Hour),
		DowntimeMinutes: 180,
		Cause:           "brakes failure",
	}}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, failTable: "wagon_failures"}

	if err := w.WriteFailures(events); err != nil {
		t.Fatalf("WriteFailures: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	vals := m.table.GetRows().Rows[0].Values
	if got := vals[0].GetStringValue(); got != "f1" {
		t.Fatalf("failure_id = %s, want f1", got)
	}
	if got := vals[3].GetI64Value(); got != 180 {
		t.Fatalf("downtime_minutes = %d, want 180", got)
	}
}

func TestGreptimeWriterValidations(t *testing.T) {
	rows := []telemetry.ValidationRow{{
		FleetID:          "fleet-01",
		WagonType:        "Tank Car",
		WagonCount:       3,
		ExpectedFailures: 5.184,
		ObservedFailures: 5,
		Timestamp:        time.Unix(0, 0).UTC(),
	}}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, reportTable: "fleet_validation"}

	if err := w.WriteValidations(rows); err != nil {
		t.Fatalf("WriteValidations: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	vals := m.table.GetRows().Rows[0].Values
	if got := vals[1].GetStringValue(); got != "Tank Car" {
		t.Fatalf("wagon_type = %s, want Tank Car", got)
	}
	if got := vals[2].GetI64Value(); got != 3 {
		t.Fatalf("wagon_count = %d, want 3", got)
	}
}

func TestGreptimeWriterEmptyBatchNoCall(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, sensorTable: "wagon_sensors"}
	if err := w.WriteBatch(nil); err != nil {
		t.Fatalf("WriteBatch(nil): %v", err)
	}
	if m.table != nil {
		t.Fatalf("empty batch should not reach the client")
	}
}
