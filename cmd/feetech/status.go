package main

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/feetech/pkg/robot"
	"github.com/gwillem/feetech/pkg/servo"
)

type StatusCommand struct{}

func (c *StatusCommand) Execute(args []string) error {
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		cal := cfg.Calibration()
		status := make(map[robot.MotorName]robot.MotorStatus, len(cal))
		for _, name := range cal.Names() {
			var st robot.MotorStatus
			err := retry(ctx, func() (err error) {
				st, err = robot.ReadMotorStatus(ctx, conn, cal[name])
				return err
			})
			if err != nil {
				return fmt.Errorf("read %s status: %w", name, err)
			}
			status[name] = st
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Motors on %s", cfg.Port)))
		fmt.Println(renderStatusTable(cal.Names(), status))
		return nil
	})
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func renderStatusTable(names []robot.MotorName, status map[robot.MotorName]robot.MotorStatus) string {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableHeaderStyle := cellStyle.Bold(true).Foreground(lipgloss.Color("12"))
	motorStyle := cellStyle.Foreground(lipgloss.Color("14"))
	onStyle := cellStyle.Foreground(lipgloss.Color("10"))
	hotStyle := cellStyle.Foreground(lipgloss.Color("9"))

	rows := make([][]string, 0, len(names))
	temps := make([]int, 0, len(names))
	for _, name := range names {
		st, ok := status[name]
		if !ok {
			continue
		}
		torque := "off"
		if st.Enabled {
			torque = "on"
		}
		temps = append(temps, st.Temperature)
		rows = append(rows, []string{
			string(name),
			fmt.Sprintf("%d", st.ID),
			fmt.Sprintf("%d", st.Raw),
			fmt.Sprintf("%.1f°", degrees(st.Position)),
			fmt.Sprintf("%.1f°", degrees(st.Goal)),
			fmt.Sprintf("%.0f%%", st.Load*100),
			fmt.Sprintf("%.0f%%", st.TorqueLimit*100),
			fmt.Sprintf("%d°C", st.Temperature),
			fmt.Sprintf("%.1fV", st.Voltage),
			torque,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Motor", "ID", "Raw", "Position", "Goal", "Load", "Limit", "Temp", "Voltage", "Torque").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return motorStyle
			case 7:
				if row >= 0 && row < len(rows) && temps[row] >= 60 {
					return hotStyle
				}
			case 9:
				if row >= 0 && row < len(rows) && rows[row][9] == "on" {
					return onStyle
				}
			}
			return cellStyle
		})
	return t.Render()
}
