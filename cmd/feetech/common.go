package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/feetech/pkg/robot"
	"github.com/gwillem/feetech/pkg/scs"
	"github.com/gwillem/feetech/pkg/servo"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// MotorArg is a motor name from the configuration or a numeric servo ID.
type MotorArg struct {
	Motor string `positional-arg-name:"MOTOR" description:"Motor name or servo ID"`
}

func loadConfig() (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	return cfg, nil
}

// resolveMotors maps motor arguments to servo IDs. No arguments means every
// configured motor.
func resolveMotors(cfg *robot.Config, motors []string) ([]int, error) {
	if len(motors) == 0 {
		return cfg.Calibration().MotorIDs(), nil
	}
	ids := make([]int, 0, len(motors))
	for _, m := range motors {
		id, err := cfg.Resolve(m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// withConn opens the configured bus for the duration of fn.
func withConn(fn func(ctx context.Context, c *servo.Conn, cfg *robot.Config) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	busCfg, err := cfg.BusConfig()
	if err != nil {
		return fmt.Errorf("%w (set port in %s or pass --port)", err, opts.Config)
	}
	logger := log.New(os.Stderr, warnStyle.Render("warning")+" ", 0)

	ctx := context.Background()
	return servo.With(scs.NewHandler(busCfg), func(c *servo.Conn) error {
		return fn(ctx, c, cfg)
	}, servo.WithLogger(logger))
}

// retry repeats a single register access on communication errors.
// Multi-step sequences are not retried: a partial run leaves the servo in
// an unknown state.
func retry(ctx context.Context, op func() error) error {
	return robot.Retry(ctx, opts.Retries, op)
}

func confirm(title, description string) bool {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false
	}
	return ok
}
