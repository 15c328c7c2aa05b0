package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/feetech/pkg/robot"
	"github.com/gwillem/feetech/pkg/servo"
)

type PingCommand struct {
	Args struct {
		Motors []string `positional-arg-name:"MOTOR" description:"Motor names or servo IDs (default: all configured)"`
	} `positional-args:"yes"`
}

func (c *PingCommand) Execute(args []string) error {
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		ids, err := resolveMotors(cfg, c.Args.Motors)
		if err != nil {
			return err
		}
		cal := cfg.Calibration()

		cellStyle := lipgloss.NewStyle().Padding(0, 1)
		missingStyle := cellStyle.Foreground(lipgloss.Color("9"))

		rows := make([][]string, 0, len(ids))
		missing := 0
		for _, id := range ids {
			name := "-"
			if n, _, ok := cal.ByID(id); ok {
				name = string(n)
			}

			var model int
			err := retry(ctx, func() (err error) {
				model, err = conn.Ping(ctx, id)
				return err
			})
			if err != nil {
				missing++
				rows = append(rows, []string{fmt.Sprintf("%d", id), name, "-", err.Error()})
				continue
			}
			modelName := "unknown"
			if m, ok := feetech.GetModelByNumber(model); ok {
				modelName = m.Name
			}
			rows = append(rows, []string{fmt.Sprintf("%d", id), name, fmt.Sprintf("%d", model), modelName})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(dimStyle).
			Headers("ID", "Motor", "Model", "Name").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return cellStyle.Bold(true).Foreground(lipgloss.Color("12"))
				}
				if row >= 0 && row < len(rows) && rows[row][2] == "-" {
					return missingStyle
				}
				return cellStyle
			})
		fmt.Println(t.Render())

		if missing > 0 {
			return fmt.Errorf("%d of %d servos did not answer", missing, len(ids))
		}
		return nil
	})
}
