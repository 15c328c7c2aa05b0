package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/feetech/pkg/robot"
	"github.com/gwillem/feetech/pkg/servo"
)

type CalibrateCommand struct {
	Zero bool `long:"zero" description:"Zero each servo at its current position before recording"`
}

func (c *CalibrateCommand) Execute(args []string) error {
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		cal := cfg.Calibration()
		arm := robot.NewArm(conn, cal)

		if c.Zero {
			if !confirm("Zero every servo at its current position?", "Put the arm in its middle pose first.") {
				return fmt.Errorf("aborted")
			}
			for _, name := range cal.Names() {
				if err := servo.ZeroMotor(ctx, conn, cal[name].ID); err != nil {
					return fmt.Errorf("zero %s: %w", name, err)
				}
			}
		}

		// Disable all servos so the arm can be moved by hand
		if err := arm.Disable(ctx); err != nil {
			return err
		}

		start, err := arm.ReadRaw(ctx)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Record range of motion"))
		fmt.Println("Move each joint to its minimum AND maximum positions.")
		fmt.Println()

		model := newCalibrationModel(ctx, arm, start)
		finalModel, err := tea.NewProgram(model).Run()
		if err != nil {
			return fmt.Errorf("run calibration: %w", err)
		}
		cm := finalModel.(calibrationModel)

		out := make(robot.Calibration, len(cal))
		for _, name := range cal.Names() {
			out[name] = robot.MotorCalibration{
				ID:       cal[name].ID,
				RangeMin: cm.minPositions[name],
				RangeMax: cm.maxPositions[name],
			}
		}
		cfg.Motors = out
		if err := cfg.SaveTo(opts.Config); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println(successStyle.Render("Calibration saved to " + opts.Config))
		return nil
	})
}

type calibrationModel struct {
	ctx          context.Context
	arm          *robot.Arm
	curPositions map[robot.MotorName]int
	minPositions map[robot.MotorName]int
	maxPositions map[robot.MotorName]int
	lastErr      error
	quitting     bool
}

type tickMsg time.Time

func newCalibrationModel(ctx context.Context, arm *robot.Arm, start map[robot.MotorName]int) calibrationModel {
	m := calibrationModel{
		ctx:          ctx,
		arm:          arm,
		curPositions: make(map[robot.MotorName]int, len(start)),
		minPositions: make(map[robot.MotorName]int, len(start)),
		maxPositions: make(map[robot.MotorName]int, len(start)),
	}
	for name, pos := range start {
		m.curPositions[name] = pos
		m.minPositions[name] = pos
		m.maxPositions[name] = pos
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Init() tea.Cmd {
	return tick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		raw, err := m.arm.ReadRaw(m.ctx)
		m.lastErr = err
		for name, pos := range raw {
			m.curPositions[name] = pos
			m.minPositions[name] = min(m.minPositions[name], pos)
			m.maxPositions[name] = max(m.maxPositions[name], pos)
		}
		return m, tick()
	}

	return m, nil
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	goodStyle := cellStyle.Foreground(lipgloss.Color("10"))
	lowStyle := cellStyle.Foreground(lipgloss.Color("9"))

	names := m.arm.Calibration().Names()
	rows := make([][]string, 0, len(names))
	ranges := make([]int, 0, len(names))
	for _, name := range names {
		rangeSize := m.maxPositions[name] - m.minPositions[name]
		ranges = append(ranges, rangeSize)
		rows = append(rows, []string{
			string(name),
			fmt.Sprintf("%d", m.curPositions[name]),
			fmt.Sprintf("%d", m.minPositions[name]),
			fmt.Sprintf("%d", m.maxPositions[name]),
			fmt.Sprintf("%d", rangeSize),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Motor", "Current", "Min", "Max", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}
			if col == 4 && row >= 0 && row < len(ranges) {
				if ranges[row] > 500 {
					return goodStyle
				}
				return lowStyle
			}
			return cellStyle
		})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	if m.lastErr != nil {
		sb.WriteString(warnStyle.Render(m.lastErr.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Press Enter when done"))
	return sb.String()
}
