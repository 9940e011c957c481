// Writer implementation printing rows to STDOUT
package sim

import (
	"encoding/json"
	"fmt"

	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

// StdoutWriter prints rows as JSON lines to STDOUT.
type StdoutWriter struct{}

// Write outputs a single sensor row.
func (w *StdoutWriter) Write(row telemetry.SensorRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteBatch outputs multiple sensor rows.
func (w *StdoutWriter) WriteBatch(rows []telemetry.SensorRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteFailure prints a failure event to STDOUT.
func (w *StdoutWriter) WriteFailure(ev reliability.FailureEvent) error {
	data, _ := json.Marshal(ev)
	fmt.Println(string(data))
	return nil
}

// WriteFailures prints multiple failure events.
func (w *StdoutWriter) WriteFailures(events []reliability.FailureEvent) error {
	for _, ev := range events {
		_ = w.WriteFailure(ev)
	}
	return nil
}

// WriteValidation prints a validation report row to STDOUT.
func (w *StdoutWriter) WriteValidation(row telemetry.ValidationRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteValidations prints multiple validation report rows.
func (w *StdoutWriter) WriteValidations(rows []telemetry.ValidationRow) error {
	for _, r := range rows {
		_ = w.WriteValidation(r)
	}
	return nil
}

// WriteMetadata prints a wagon metadata record to STDOUT.
func (w *StdoutWriter) WriteMetadata(wagon telemetry.Wagon) error {
	data, _ := json.Marshal(wagon)
	fmt.Println(string(data))
	return nil
}
