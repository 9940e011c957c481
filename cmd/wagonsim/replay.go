package main

import (
	"github.com/spf13/cobra"

	"wagonsim/internal/config"
	"wagonsim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayColor     bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a sensor log file",
	Long:  "replay feeds sensor rows from a log file back into GreptimeDB or STDOUT, honoring the recorded timestamps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, cleanup, err := newSensorWriter(&config.SimulationConfig{}, replayPrintOnly, replayColor)
		if err != nil {
			return err
		}
		defer cleanup()
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to sensor log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayColor, "color", false, "Colorize STDOUT output when attached to a terminal")
	replayCmd.MarkFlagRequired("input")
}
