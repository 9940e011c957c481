package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"wagonsim/internal/config"
	"wagonsim/internal/fleet"
	"wagonsim/internal/logging"
	"wagonsim/internal/reliability"
	"wagonsim/internal/sim"
	"wagonsim/internal/telemetry"
)

var (
	simPrintOnly  bool
	simTUI        bool
	simColor      bool
	simConfigPath string
	simSchemaPath string
	simLogFile    string
	simCSVFile    string
	simStart      string
	simSeed       int64
)

// Batch variants some writers support.
type sensorBatcher interface {
	WriteBatch([]telemetry.SensorRow) error
}

type failureBatcher interface {
	WriteFailures([]reliability.FailureEvent) error
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate the fleet and emit sensor and failure logs",
	Long:  "simulate runs every configured wagon over the simulation horizon and writes the sensor series, failure events, and wagon metadata.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = simSeed
		}
		start, err := parseStart(simStart)
		if err != nil {
			return err
		}

		writer, metaWriter, cleanup, err := newWriters(cfg, simPrintOnly, simTUI, simColor, simLogFile, simCSVFile)
		if err != nil {
			return err
		}
		defer cleanup()

		log := logging.New()
		ctx := logging.NewContext(context.Background(), log)

		v, err := fleet.NewValidator(cfg, start)
		if err != nil {
			return err
		}
		_, runs, err := v.Run(ctx)
		if err != nil {
			return err
		}

		if metaWriter != nil {
			for _, run := range runs {
				if err := metaWriter.WriteMetadata(run.Wagon); err != nil {
					return err
				}
			}
		}
		for _, run := range runs {
			if err := writeSeries(writer, run.Series); err != nil {
				return err
			}
		}
		for _, run := range runs {
			if err := writeFailures(writer, run.Failures); err != nil {
				return err
			}
		}
		log.Info("simulation finished", "wagons", len(runs))
		return nil
	},
}

func writeSeries(w sim.SensorWriter, rows []telemetry.SensorRow) error {
	if bw, ok := w.(sensorBatcher); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func writeFailures(w sim.FailureWriter, events []reliability.FailureEvent) error {
	if bw, ok := w.(failureBatcher); ok {
		return bw.WriteFailures(events)
	}
	for _, ev := range events {
		if err := w.WriteFailure(ev); err != nil {
			return err
		}
	}
	return nil
}

// parseStart parses the simulation start timestamp, defaulting to the top
// of the current hour in UTC.
func parseStart(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(time.Hour), nil
	}
	return time.Parse(time.RFC3339, s)
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render the run in an interactive terminal UI")
	simulateCmd.Flags().BoolVar(&simColor, "color", false, "Colorize STDOUT output when attached to a terminal")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export sensor/failure logs (JSONL)")
	simulateCmd.Flags().StringVar(&simCSVFile, "csv", "", "Path to export sensor/failure logs (CSV)")
	simulateCmd.Flags().StringVar(&simStart, "start", "", "Simulation start timestamp (RFC3339, default: top of current hour)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Override the configured random seed")
}
