// ColorStdoutWriter prints human-friendly, colorized rows to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"wagonsim/internal/config"
	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints rows using ANSI colors, one color per wagon type.
type ColorStdoutWriter struct {
	cfg        *config.SimulationConfig
	out        io.Writer
	once       sync.Once
	typeColors map[string]string
	colorIdx   int
}

var typePalette = []string{colorBlue, colorMagenta, colorCyan, colorGreen, colorYellow, colorRed}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:        cfg,
		out:        os.Stdout,
		typeColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) getTypeColor(name string) string {
	if c, ok := w.typeColors[name]; ok {
		return c
	}
	c := typePalette[w.colorIdx%len(typePalette)]
	w.typeColors[name] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Fleet:\t%s\n", w.cfg.FleetID)
	fmt.Fprintf(tw, "Horizon (h):\t%d\n", w.cfg.Hours)
	fmt.Fprintf(tw, "Frequency (min):\t%d\n", w.cfg.FreqMinutes)
	fmt.Fprintf(tw, "Seed:\t%d\n", w.cfg.Seed)
	tw.Flush()

	fmt.Fprintln(w.out, "\nWagon Types:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Type\tCount\tBase Rate\n")
	for _, wt := range w.cfg.WagonTypes {
		col := w.getTypeColor(wt.Name)
		fmt.Fprintf(tw, "%s%s%s\t%d\t%g\n", col, wt.Name, colorReset, wt.Count, wt.LambdaBase)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single sensor row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.SensorRow) error {
	w.once.Do(w.printOverview)

	tColor := w.getTypeColor(row.WagonType)
	statusColor := colorGreen
	status := "ok"
	if row.Failure {
		statusColor = colorRed
		status = "failure"
	}

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%stype=%s%s ", tColor, row.WagonType, colorReset)
	fmt.Fprintf(w.out, "%swagon=%s%s ", colorBlue, row.WagonID, colorReset)
	fmt.Fprintf(w.out, "%sspd=%.1f%s ", colorGreen, row.SpeedKmh, colorReset)
	fmt.Fprintf(w.out, "%sbrake=%.2f%s ", colorYellow, row.BrakeBar, colorReset)
	fmt.Fprintf(w.out, "%stemp=%.1f%s ", colorMagenta, row.AxleTempC, colorReset)
	fmt.Fprintf(w.out, "%svib=%.2f%s ", colorCyan, row.VibrationG, colorReset)
	fmt.Fprintf(w.out, "%sbatt=%.1f%s ", colorCyan, row.BatteryPct, colorReset)
	fmt.Fprintf(w.out, "%sstatus=%s%s\n", statusColor, status, colorReset)
	return nil
}

// WriteFailure outputs a failure event in colorized format.
func (w *ColorStdoutWriter) WriteFailure(ev reliability.FailureEvent) error {
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%s[%s]%s %sFAIL%s part=%s repair=%s downtime=%dm cause=%s\n",
		colorGray, ev.StartTime.Format(time.RFC3339), colorReset,
		colorRed, colorReset,
		ev.Part, ev.RepairTime.Format(time.RFC3339), ev.DowntimeMinutes, ev.Cause,
	)
	return nil
}

// WriteValidation outputs one report line in colorized tabular format.
func (w *ColorStdoutWriter) WriteValidation(row telemetry.ValidationRow) error {
	col := w.getTypeColor(row.WagonType)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s%s%s\twagons=%d\texpected=%.3f\tobserved=%d\tdev=%.3f (%.1f%%)\n",
		col, row.WagonType, colorReset,
		row.WagonCount, row.ExpectedFailures, row.ObservedFailures,
		row.AbsDeviation, row.RelDeviation*100,
	)
	return tw.Flush()
}
