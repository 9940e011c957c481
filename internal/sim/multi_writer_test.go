package sim

import (
	"testing"
	"time"

	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

type recordingWriter struct {
	rows        []telemetry.SensorRow
	batches     int
	failures    []reliability.FailureEvent
	validations []telemetry.ValidationRow
}

func (r *recordingWriter) Write(row telemetry.SensorRow) error {
	r.rows = append(r.rows, row)
	return nil
}

func (r *recordingWriter) WriteFailure(ev reliability.FailureEvent) error {
	r.failures = append(r.failures, ev)
	return nil
}

func (r *recordingWriter) WriteValidation(row telemetry.ValidationRow) error {
	r.validations = append(r.validations, row)
	return nil
}

type recordingBatchWriter struct{ recordingWriter }

func (r *recordingBatchWriter) WriteBatch(rows []telemetry.SensorRow) error {
	r.rows = append(r.rows, rows...)
	r.batches++
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	a := &recordingWriter{}
	b := &recordingWriter{}
	mw := NewMultiWriter(
		[]SensorWriter{a, b},
		[]FailureWriter{a, b},
		[]ValidationWriter{a},
	)

	row := telemetry.SensorRow{WagonID: "WGN-1", Timestamp: time.Unix(0, 0)}
	if err := mw.Write(row); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(a.rows) != 1 || len(b.rows) != 1 {
		t.Errorf("sensor fan-out: a=%d b=%d, want 1 each", len(a.rows), len(b.rows))
	}

	if err := mw.WriteFailure(reliability.FailureEvent{ID: "f1"}); err != nil {
		t.Fatalf("WriteFailure: %v", err)
	}
	if len(a.failures) != 1 || len(b.failures) != 1 {
		t.Errorf("failure fan-out: a=%d b=%d, want 1 each", len(a.failures), len(b.failures))
	}

	if err := mw.WriteValidation(telemetry.ValidationRow{WagonType: "Boxcar"}); err != nil {
		t.Fatalf("WriteValidation: %v", err)
	}
	if len(a.validations) != 1 {
		t.Errorf("validation fan-out: got %d rows, want 1", len(a.validations))
	}
}

func TestMultiWriterBatchUpgrade(t *testing.T) {
	plain := &recordingWriter{}
	batch := &recordingBatchWriter{}
	mw := NewMultiWriter([]SensorWriter{plain, batch}, nil, nil)

	rows := []telemetry.SensorRow{
		{WagonID: "WGN-1", Timestamp: time.Unix(0, 0)},
		{WagonID: "WGN-2", Timestamp: time.Unix(1, 0)},
	}
	if err := mw.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if len(plain.rows) != 2 {
		t.Errorf("plain writer got %d rows, want 2", len(plain.rows))
	}
	if batch.batches != 1 || len(batch.rows) != 2 {
		t.Errorf("batch writer: batches=%d rows=%d, want 1/2", batch.batches, len(batch.rows))
	}
}
