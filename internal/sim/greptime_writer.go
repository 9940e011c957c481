package sim

import (
	"context"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client      greptimeClient
	sensorTable string
	failTable   string
	reportTable string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer. Table name arguments
// may be empty to use the defaults.
func NewGreptimeDBWriter(host, database, sensorTable, failTable, reportTable string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if sensorTable == "" {
		sensorTable = telemetry.SensorTableName
	}
	if failTable == "" {
		failTable = "wagon_failures"
	}
	if reportTable == "" {
		reportTable = "fleet_validation"
	}
	return &GreptimeDBWriter{
		client:      client,
		sensorTable: sensorTable,
		failTable:   failTable,
		reportTable: reportTable,
	}, nil
}

// Write inserts a single sensor row.
func (w *GreptimeDBWriter) Write(row telemetry.SensorRow) error {
	return w.WriteBatch([]telemetry.SensorRow{row})
}

// WriteBatch inserts multiple sensor rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.SensorRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.sensorTable)
	if err != nil {
		return err
	}
	if err := addColumns(tbl,
		tag("fleet_id"), tag("wagon_id"), tag("wagon_type"),
		field("speed_kmh", types.FLOAT), field("brake_bar", types.FLOAT),
		field("axle_temp_c", types.FLOAT), field("vibration_g", types.FLOAT),
		field("battery_pct", types.FLOAT), field("failure", types.BOOLEAN),
	); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.FleetID, r.WagonID, r.WagonType,
			r.SpeedKmh, r.BrakeBar, r.AxleTempC, r.VibrationG, r.BatteryPct,
			r.Failure, r.Timestamp,
		); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteFailure inserts a single failure event.
func (w *GreptimeDBWriter) WriteFailure(ev reliability.FailureEvent) error {
	return w.WriteFailures([]reliability.FailureEvent{ev})
}

// WriteFailures inserts multiple failure events.
func (w *GreptimeDBWriter) WriteFailures(events []reliability.FailureEvent) error {
	if len(events) == 0 {
		return nil
	}
	tbl, err := table.New(w.failTable)
	if err != nil {
		return err
	}
	if err := addColumns(tbl,
		tag("failure_id"), tag("part_name"),
		field("repair_time", types.TIMESTAMP_MILLISECOND),
		field("downtime_minutes", types.INT64),
		field("cause", types.STRING),
	); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("start_time", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	for _, ev := range events {
		if err := tbl.AddRow(
			ev.ID, ev.Part, ev.RepairTime, int64(ev.DowntimeMinutes), ev.Cause, ev.StartTime,
		); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteValidation inserts a single validation report row.
func (w *GreptimeDBWriter) WriteValidation(row telemetry.ValidationRow) error {
	return w.WriteValidations([]telemetry.ValidationRow{row})
}

// WriteValidations inserts multiple validation report rows.
func (w *GreptimeDBWriter) WriteValidations(rows []telemetry.ValidationRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.reportTable)
	if err != nil {
		return err
	}
	if err := addColumns(tbl,
		tag("fleet_id"), tag("wagon_type"),
		field("wagon_count", types.INT64),
		field("expected_failures", types.FLOAT),
		field("observed_failures", types.INT64),
		field("abs_deviation", types.FLOAT),
		field("rel_deviation", types.FLOAT),
	); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.FleetID, r.WagonType, int64(r.WagonCount), r.ExpectedFailures,
			int64(r.ObservedFailures), r.AbsDeviation, r.RelDeviation, r.Timestamp,
		); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

type column struct {
	name  string
	typ   types.ColumnType
	isTag bool
}

func tag(name string) column {
	return column{name: name, typ: types.STRING, isTag: true}
}

func field(name string, typ types.ColumnType) column {
	return column{name: name, typ: typ}
}

func addColumns(tbl *table.Table, cols ...column) error {
	for _, c := range cols {
		var err error
		if c.isTag {
			err = tbl.AddTagColumn(c.name, c.typ)
		} else {
			err = tbl.AddFieldColumn(c.name, c.typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
