package main

import (
	"os"

	"golang.org/x/term"

	"wagonsim/internal/config"
	"wagonsim/internal/sim"
)

// fleetWriter bundles the row kinds a fleet run emits.
type fleetWriter interface {
	sim.SensorWriter
	sim.FailureWriter
	sim.ValidationWriter
}

// newWriters sets up output writers based on flags and env vars. It returns
// the combined writer, an optional metadata writer, and a cleanup function
// to close any resources.
func newWriters(cfg *config.SimulationConfig, printOnly, useTUI, useColor bool, logFile, csvFile string) (fleetWriter, sim.MetadataWriter, func(), error) {
	cleanup := func() {}

	writer, closer, err := baseWriter(cfg, printOnly, useTUI, useColor)
	if err != nil {
		return nil, nil, nil, err
	}
	var meta sim.MetadataWriter
	if mw, ok := writer.(sim.MetadataWriter); ok {
		meta = mw
	}
	if logFile == "" && csvFile == "" {
		return writer, meta, closer, nil
	}

	sensorWriters := []sim.SensorWriter{writer}
	failWriters := []sim.FailureWriter{writer}
	reportWriters := []sim.ValidationWriter{writer}
	closers := []func(){closer}

	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile, logFile+".failures", logFile+".wagons", logFile+".report")
		if err != nil {
			closer()
			return nil, nil, nil, err
		}
		sensorWriters = append(sensorWriters, fw)
		failWriters = append(failWriters, fw)
		reportWriters = append(reportWriters, fw)
		closers = append(closers, func() { fw.Close() })
		meta = fw
	}
	if csvFile != "" {
		cw, err := sim.NewCSVWriter(csvFile, csvFile+".failures")
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, nil, err
		}
		sensorWriters = append(sensorWriters, cw)
		failWriters = append(failWriters, cw)
		closers = append(closers, func() { cw.Close() })
	}

	mw := sim.NewMultiWriter(sensorWriters, failWriters, reportWriters)
	cleanup = func() {
		for _, c := range closers {
			c()
		}
	}
	return mw, meta, cleanup, nil
}

// baseWriter chooses the primary writer based on flags and env vars.
func baseWriter(cfg *config.SimulationConfig, printOnly, useTUI, useColor bool) (fleetWriter, func(), error) {
	if useTUI {
		tw := sim.NewTUIWriter(cfg)
		return tw, tw.Close, nil
	}
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		if useColor && term.IsTerminal(int(os.Stdout.Fd())) {
			return sim.NewColorStdoutWriter(cfg), func() {}, nil
		}
		return &sim.StdoutWriter{}, func() {}, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	w, err := sim.NewGreptimeDBWriter(endpoint, database,
		os.Getenv("GREPTIMEDB_TABLE"),
		os.Getenv("FAILURE_TABLE"),
		os.Getenv("VALIDATION_TABLE"))
	if err != nil {
		return nil, nil, err
	}
	return w, func() {}, nil
}

// newSensorWriter creates a sensor-only writer for replay.
func newSensorWriter(cfg *config.SimulationConfig, printOnly, useColor bool) (sim.SensorWriter, func(), error) {
	return baseWriter(cfg, printOnly, false, useColor)
}
