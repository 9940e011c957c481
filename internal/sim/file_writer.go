package sim

import (
	"encoding/json"
	"os"

	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

// FileWriter writes sensor, failure, metadata, and report data to JSONL files.
type FileWriter struct {
	sensorFile *os.File
	failFile   *os.File
	metaFile   *os.File
	reportFile *os.File
	sensorEnc  *json.Encoder
	failEnc    *json.Encoder
	metaEnc    *json.Encoder
	reportEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. failurePath, metadataPath, or
// reportPath may be empty to skip those logs.
func NewFileWriter(sensorPath, failurePath, metadataPath, reportPath string) (*FileWriter, error) {
	sf, err := os.Create(sensorPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{sensorFile: sf, sensorEnc: json.NewEncoder(sf)}
	open := func(path string) (*os.File, *json.Encoder, error) {
		if path == "" {
			return nil, nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			fw.Close()
			return nil, nil, err
		}
		return f, json.NewEncoder(f), nil
	}
	if fw.failFile, fw.failEnc, err = open(failurePath); err != nil {
		return nil, err
	}
	if fw.metaFile, fw.metaEnc, err = open(metadataPath); err != nil {
		return nil, err
	}
	if fw.reportFile, fw.reportEnc, err = open(reportPath); err != nil {
		return nil, err
	}
	return fw, nil
}

// Write logs a single sensor row.
func (f *FileWriter) Write(row telemetry.SensorRow) error {
	return f.sensorEnc.Encode(row)
}

// WriteBatch logs multiple sensor rows.
func (f *FileWriter) WriteBatch(rows []telemetry.SensorRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteFailure logs a single failure event, if enabled.
func (f *FileWriter) WriteFailure(ev reliability.FailureEvent) error {
	if f.failEnc == nil {
		return nil
	}
	return f.failEnc.Encode(ev)
}

// WriteFailures logs multiple failure events.
func (f *FileWriter) WriteFailures(events []reliability.FailureEvent) error {
	for _, ev := range events {
		if err := f.WriteFailure(ev); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetadata logs a wagon metadata record, if enabled.
func (f *FileWriter) WriteMetadata(w telemetry.Wagon) error {
	if f.metaEnc == nil {
		return nil
	}
	return f.metaEnc.Encode(w)
}

// WriteValidation logs a validation report row, if enabled.
func (f *FileWriter) WriteValidation(row telemetry.ValidationRow) error {
	if f.reportEnc == nil {
		return nil
	}
	return f.reportEnc.Encode(row)
}

// WriteValidations logs multiple validation report rows.
func (f *FileWriter) WriteValidations(rows []telemetry.ValidationRow) error {
	for _, r := range rows {
		if err := f.WriteValidation(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.sensorFile, f.failFile, f.metaFile, f.reportFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
