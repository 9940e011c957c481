package sim

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"wagonsim/internal/config"
	"wagonsim/internal/reliability"
	"wagonsim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// sensorMsg carries the latest reading of one wagon.
type sensorMsg struct{ telemetry.SensorRow }

// failureMsg carries a failure log line.
type failureMsg struct{ reliability.FailureEvent }

// validationMsg carries one fleet report line.
type validationMsg struct{ telemetry.ValidationRow }

// TUIWriter renders the running simulation using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements SensorWriter.
func (w *TUIWriter) Write(row telemetry.SensorRow) error {
	w.program.Send(sensorMsg{row})
	return nil
}

// WriteFailure implements FailureWriter.
func (w *TUIWriter) WriteFailure(ev reliability.FailureEvent) error {
	w.program.Send(failureMsg{ev})
	return nil
}

// WriteValidation implements ValidationWriter.
func (w *TUIWriter) WriteValidation(row telemetry.ValidationRow) error {
	w.program.Send(validationMsg{row})
	return nil
}

// Close stops the TUI without signalling the process and waits for exit.
func (w *TUIWriter) Close() {
	w.sendSignal.Store(false)
	if p, ok := w.program.(*tea.Program); ok {
		p.Quit()
	}
	<-w.done
}

var (
	tuiTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tuiBorderStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	tuiOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	tuiFailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tuiHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type tuiModel struct {
	cfg       *config.SimulationConfig
	wagons    table.Model
	failures  viewport.Model
	failLines []string
	report    []string
	latest    map[string]telemetry.SensorRow
	order     []string
	width     int
	ready     bool
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	cols := []table.Column{
		{Title: "Wagon", Width: 14},
		{Title: "Type", Width: 16},
		{Title: "Speed", Width: 7},
		{Title: "Brake", Width: 7},
		{Title: "Temp", Width: 7},
		{Title: "Vib", Width: 6},
		{Title: "Batt", Width: 6},
		{Title: "Status", Width: 8},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(12))
	return tuiModel{
		cfg:      cfg,
		wagons:   t,
		failures: viewport.New(80, 8),
		latest:   make(map[string]telemetry.SensorRow),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.failures.Width = msg.Width - 4
		m.ready = true
	case sensorMsg:
		if _, seen := m.latest[msg.WagonID]; !seen {
			m.order = append(m.order, msg.WagonID)
		}
		m.latest[msg.WagonID] = msg.SensorRow
		m.refreshRows()
	case failureMsg:
		line := fmt.Sprintf("[%s] %s repaired %s downtime=%dm",
			msg.StartTime.Format(time.RFC3339), msg.Part,
			msg.RepairTime.Format(time.RFC3339), msg.DowntimeMinutes)
		m.failLines = append(m.failLines, line)
		m.failures.SetContent(wordwrap.String(joinLines(m.failLines), m.failures.Width))
		m.failures.GotoBottom()
	case validationMsg:
		m.report = append(m.report, fmt.Sprintf("%s: wagons=%d expected=%.3f observed=%d",
			msg.WagonType, msg.WagonCount, msg.ExpectedFailures, msg.ObservedFailures))
	}
	var cmd tea.Cmd
	m.wagons, cmd = m.wagons.Update(msg)
	return m, cmd
}

func (m *tuiModel) refreshRows() {
	rows := make([]table.Row, 0, len(m.order))
	for _, id := range m.order {
		r := m.latest[id]
		status := tuiOKStyle.Render("ok")
		if r.Failure {
			status = tuiFailStyle.Render("failure")
		}
		rows = append(rows, table.Row{
			r.WagonID, r.WagonType,
			fmt.Sprintf("%.1f", r.SpeedKmh),
			fmt.Sprintf("%.2f", r.BrakeBar),
			fmt.Sprintf("%.1f", r.AxleTempC),
			fmt.Sprintf("%.2f", r.VibrationG),
			fmt.Sprintf("%.1f", r.BatteryPct),
			status,
		})
	}
	m.wagons.SetRows(rows)
}

func (m tuiModel) View() string {
	title := tuiTitleStyle.Render(fmt.Sprintf("wagonsim: fleet %s", m.cfg.FleetID))
	sections := []string{
		title,
		tuiBorderStyle.Render(m.wagons.View()),
		tuiTitleStyle.Render("Failures"),
		tuiBorderStyle.Render(m.failures.View()),
	}
	if len(m.report) > 0 {
		sections = append(sections, tuiTitleStyle.Render("Validation"))
		sections = append(sections, joinLines(m.report))
	}
	sections = append(sections, tuiHelpStyle.Render("q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
