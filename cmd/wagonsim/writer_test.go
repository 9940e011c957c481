package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"wagonsim/internal/sim"
	"wagonsim/internal/telemetry"
)

func TestNewWritersPrintOnly(t *testing.T) {
	w, _, cleanup, err := newWriters(nil, true, false, false, "", "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", w)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, _, cleanup, err := newWriters(nil, false, false, false, "", "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", w)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensors.log")
	w, meta, cleanup, err := newWriters(nil, true, false, false, path, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	if _, ok := w.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", w)
	}
	if _, ok := meta.(*sim.FileWriter); !ok {
		t.Fatalf("expected metadata writer *sim.FileWriter, got %T", meta)
	}
	row := telemetry.SensorRow{FleetID: "f1", WagonID: "WGN-1", Timestamp: time.Now()}
	if err := w.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := meta.WriteMetadata(telemetry.Wagon{ID: "WGN-1", Type: "Boxcar"}); err != nil {
		t.Fatalf("write metadata failed: %v", err)
	}
	cleanup()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected log file to be non-empty")
	}
	metaInfo, err := os.Stat(path + ".wagons")
	if err != nil {
		t.Fatalf("stat wagons failed: %v", err)
	}
	if metaInfo.Size() == 0 {
		t.Fatalf("expected wagons file to be non-empty")
	}
}

func TestNewWritersCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensors.csv")
	w, _, cleanup, err := newWriters(nil, true, false, false, "", path)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	if _, ok := w.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", w)
	}
	row := telemetry.SensorRow{FleetID: "f1", WagonID: "WGN-1", Timestamp: time.Now()}
	if err := w.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cleanup()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected csv file to be non-empty")
	}
}

func TestParseStart(t *testing.T) {
	got, err := parseStart("2025-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("parseStart: %v", err)
	}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("parseStart = %v, want %v", got, want)
	}
	if _, err := parseStart("yesterday"); err == nil {
		t.Fatal("expected parse error")
	}
	def, err := parseStart("")
	if err != nil {
		t.Fatalf("parseStart default: %v", err)
	}
	if def.Minute() != 0 || def.Second() != 0 {
		t.Fatalf("default start not aligned to the hour: %v", def)
	}
}
