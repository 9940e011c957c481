package sim

import (
	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

// MultiWriter fan-outs sensor, failure, and validation rows to multiple writers.
type MultiWriter struct {
	sensorWriters []SensorWriter
	failWriters   []FailureWriter
	reportWriters []ValidationWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(sws []SensorWriter, fws []FailureWriter, vws []ValidationWriter) *MultiWriter {
	return &MultiWriter{sensorWriters: sws, failWriters: fws, reportWriters: vws}
}

// Write sends a sensor row to all writers.
func (mw *MultiWriter) Write(row telemetry.SensorRow) error {
	for _, w := range mw.sensorWriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple sensor rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.SensorRow) error {
	for _, w := range mw.sensorWriters {
		if bw, ok := w.(batchSensorWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFailure sends a failure event to all failure writers.
func (mw *MultiWriter) WriteFailure(ev reliability.FailureEvent) error {
	for _, w := range mw.failWriters {
		if err := w.WriteFailure(ev); err != nil {
			return err
		}
	}
	return nil
}

// WriteFailures sends multiple failure events to all failure writers, using
// batch if supported.
func (mw *MultiWriter) WriteFailures(events []reliability.FailureEvent) error {
	for _, w := range mw.failWriters {
		if bw, ok := w.(batchFailureWriter); ok {
			if err := bw.WriteFailures(events); err != nil {
				return err
			}
			continue
		}
		for _, ev := range events {
			if err := w.WriteFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteValidation sends a report row to all validation writers.
func (mw *MultiWriter) WriteValidation(row telemetry.ValidationRow) error {
	for _, w := range mw.reportWriters {
		if err := w.WriteValidation(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteValidations sends multiple report rows to all validation writers,
// using batch if supported.
func (mw *MultiWriter) WriteValidations(rows []telemetry.ValidationRow) error {
	for _, w := range mw.reportWriters {
		if bw, ok := w.(batchValidationWriter); ok {
			if err := bw.WriteValidations(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteValidation(r); err != nil {
				return err
			}
		}
	}
	return nil
}
