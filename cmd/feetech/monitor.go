package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/feetech/pkg/robot"
	"github.com/gwillem/feetech/pkg/servo"
	"github.com/gwillem/feetech/pkg/telemetry"
)

type MonitorCommand struct {
	Hz int `long:"hz" description:"Polling frequency (default: telemetry.hz from the configuration)"`
}

const (
	maxLogs = 4
	// title, legend, table and log box
	reservedHeight = 2 + 2 + 10 + 6
)

var palette = []string{"196", "208", "226", "46", "51", "201", "99", "250"}

var (
	chartStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	logStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

type stateMsg telemetry.State
type logMsg string

type monitorModel struct {
	ctx    context.Context
	poller *telemetry.Poller
	names  []robot.MotorName
	colors map[robot.MotorName]string
	chart  *streamlinechart.Model
	status map[robot.MotorName]robot.MotorStatus
	logs   []string
	width  int
	height int
}

// waitForState and waitForLog give up once ctx is done, so no command
// outlives the poller.
func waitForState(ctx context.Context, p *telemetry.Poller) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-p.States():
			return stateMsg(s)
		case <-ctx.Done():
			return nil
		}
	}
}

func waitForLog(ctx context.Context, p *telemetry.Poller) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.Logs():
			return logMsg(msg)
		case <-ctx.Done():
			return nil
		}
	}
}

func newMonitorModel(ctx context.Context, p *telemetry.Poller, names []robot.MotorName) monitorModel {
	chart := streamlinechart.New(80, 12, streamlinechart.WithYRange(-100, 100))
	colors := make(map[robot.MotorName]string, len(names))
	for i, name := range names {
		colors[name] = palette[i%len(palette)]
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}
	return monitorModel{
		ctx:    ctx,
		poller: p,
		names:  names,
		colors: colors,
		chart:  &chart,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(waitForState(m.ctx, m.poller), waitForLog(m.ctx, m.poller))
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.chart.Resize(max(msg.Width-4, 40), max(msg.Height-reservedHeight, 8))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case stateMsg:
		if msg.Status != nil {
			m.status = msg.Status
			for name, st := range msg.Status {
				m.chart.PushDataSet(string(name), st.Normalized)
			}
			m.chart.DrawAll()
		}
		return m, waitForState(m.ctx, m.poller)

	case logMsg:
		m.logs = append(m.logs, string(msg))
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}
		return m, waitForLog(m.ctx, m.poller)
	}

	return m, nil
}

func (m monitorModel) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Feetech Monitor"))
	sb.WriteString(dimStyle.Render(fmt.Sprintf(" - %d Hz", m.poller.Hz())))
	sb.WriteString("\n\n")
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	var legend []string
	for _, name := range m.names {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors[name])).Bold(true).Render("━━")
		legend = append(legend, swatch+" "+string(name))
	}
	sb.WriteString(strings.Join(legend, "  "))
	sb.WriteString("\n")

	if m.status != nil {
		sb.WriteString(renderStatusTable(m.names, m.status))
		sb.WriteString("\n")
	}

	lines := dimStyle.Render("Press 'q' to quit")
	if len(m.logs) > 0 {
		lines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Width(max(m.width-4, 20)).Render(lines))
	sb.WriteString("\n")
	return sb.String()
}

func (c *MonitorCommand) Execute(args []string) error {
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		hz := c.Hz
		if hz == 0 {
			hz = cfg.Telemetry.Hz
		}
		cal := cfg.Calibration()
		poller := telemetry.NewPoller(robot.NewArm(conn, cal), telemetry.Config{Hz: hz})

		ctx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- poller.Start(ctx) }()

		_, err := tea.NewProgram(newMonitorModel(ctx, poller, cal.Names()), tea.WithAltScreen()).Run()
		cancel()
		// The poller owns the connection until it returns.
		<-done
		if err != nil {
			return fmt.Errorf("run monitor: %w", err)
		}
		return nil
	})
}
