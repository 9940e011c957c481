package sim

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

// CSVWriter writes sensor rows and failure events as CSV, the format
// downstream ingestion expects.
type CSVWriter struct {
	sensorFile *os.File
	failFile   *os.File
	sensorCSV  *csv.Writer
	failCSV    *csv.Writer
}

// NewCSVWriter creates a CSVWriter and emits header rows. failurePath may
// be empty to skip the failure log.
func NewCSVWriter(sensorPath, failurePath string) (*CSVWriter, error) {
	sf, err := os.Create(sensorPath)
	if err != nil {
		return nil, err
	}
	w := &CSVWriter{sensorFile: sf, sensorCSV: csv.NewWriter(sf)}
	if err := w.sensorCSV.Write([]string{
		"timestamp", "wagon_id", "wagon_type",
		"speed_kmh", "brake_bar", "axle_temp_C", "vibration_g", "battery_%", "failure",
	}); err != nil {
		sf.Close()
		return nil, err
	}
	if failurePath != "" {
		ff, err := os.Create(failurePath)
		if err != nil {
			sf.Close()
			return nil, err
		}
		w.failFile = ff
		w.failCSV = csv.NewWriter(ff)
		if err := w.failCSV.Write([]string{
			"failure_id", "part_name", "start_time", "repair_time", "downtime_minutes", "cause",
		}); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write appends a single sensor row.
func (w *CSVWriter) Write(row telemetry.SensorRow) error {
	return w.sensorCSV.Write([]string{
		row.Timestamp.Format(time.RFC3339),
		row.WagonID,
		row.WagonType,
		formatFloat(row.SpeedKmh),
		formatFloat(row.BrakeBar),
		formatFloat(row.AxleTempC),
		formatFloat(row.VibrationG),
		formatFloat(row.BatteryPct),
		strconv.FormatBool(row.Failure),
	})
}

// WriteBatch appends multiple sensor rows.
func (w *CSVWriter) WriteBatch(rows []telemetry.SensorRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteFailure appends a single failure event, if enabled.
func (w *CSVWriter) WriteFailure(ev reliability.FailureEvent) error {
	if w.failCSV == nil {
		return nil
	}
	return w.failCSV.Write([]string{
		ev.ID,
		ev.Part,
		ev.StartTime.Format(time.RFC3339),
		ev.RepairTime.Format(time.RFC3339),
		strconv.Itoa(ev.DowntimeMinutes),
		ev.Cause,
	})
}

// WriteFailures appends multiple failure events.
func (w *CSVWriter) WriteFailures(events []reliability.FailureEvent) error {
	for _, ev := range events {
		if err := w.WriteFailure(ev); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered rows and closes the underlying files.
func (w *CSVWriter) Close() error {
	var err error
	w.sensorCSV.Flush()
	if e := w.sensorCSV.Error(); e != nil {
		err = e
	}
	if w.failCSV != nil {
		w.failCSV.Flush()
		if e := w.failCSV.Error(); e != nil && err == nil {
			err = e
		}
	}
	if e := w.sensorFile.Close(); e != nil && err == nil {
		err = e
	}
	if w.failFile != nil {
		if e := w.failFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
