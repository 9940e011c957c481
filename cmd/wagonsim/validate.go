package main

import (
	"context"

	"github.com/spf13/cobra"

	"wagonsim/internal/config"
	"wagonsim/internal/fleet"
	"wagonsim/internal/logging"
	"wagonsim/internal/sim"
	"wagonsim/internal/telemetry"
)

var (
	valPrintOnly  bool
	valColor      bool
	valConfigPath string
	valSchemaPath string
	valLogFile    string
	valStart      string
	valSeed       int64
)

type validationBatcher interface {
	WriteValidations([]telemetry.ValidationRow) error
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check simulated failure counts against the analytic expectation",
	Long:  "validate simulates the fleet and compares observed failure counts per wagon type against the expected count derived from the configured base rates.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(valConfigPath, valSchemaPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = valSeed
		}
		start, err := parseStart(valStart)
		if err != nil {
			return err
		}

		writer, _, cleanup, err := newWriters(cfg, valPrintOnly, false, valColor, valLogFile, "")
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
		report, _, err := v.Run(ctx)
		if err != nil {
			return err
		}
		if err := writeValidations(writer, report.Rows()); err != nil {
			return err
		}
		for _, name := range report.TypeNames() {
			tr := report.Types[name]
			log.Info("validation", "type", name,
				"wagons", tr.WagonCount,
				"expected", tr.ExpectedFailures,
				"observed", tr.ObservedFailures,
				"rel_deviation", tr.RelDeviation)
		}
		return nil
	},
}

func writeValidations(w sim.ValidationWriter, rows []telemetry.ValidationRow) error {
	if bw, ok := w.(validationBatcher); ok {
		return bw.WriteValidations(rows)
	}
	for _, r := range rows {
		if err := w.WriteValidation(r); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	validateCmd.Flags().BoolVar(&valPrintOnly, "print-only", false, "Print report rows to STDOUT instead of writing to DB")
	validateCmd.Flags().BoolVar(&valColor, "color", false, "Colorize STDOUT output when attached to a terminal")
	validateCmd.Flags().StringVar(&valConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	validateCmd.Flags().StringVar(&valSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	validateCmd.Flags().StringVar(&valLogFile, "log-file", "", "Path to export the validation report (JSONL)")
	validateCmd.Flags().StringVar(&valStart, "start", "", "Simulation start timestamp (RFC3339, default: top of current hour)")
	validateCmd.Flags().Int64Var(&valSeed, "seed", 0, "Override the configured random seed")
}
