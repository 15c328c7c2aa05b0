package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gwillem/feetech/pkg/robot"
	"github.com/gwillem/feetech/pkg/scs"
	"github.com/gwillem/feetech/pkg/servo"
)

type PortsCommand struct{}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := scs.ListPorts()
	if err != nil {
		return fmt.Errorf("list ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println(dimStyle.Render("No serial ports found."))
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

type SetIDCommand struct {
	Yes  bool `short:"y" long:"yes" description:"Do not ask for confirmation"`
	Args struct {
		Old int `positional-arg-name:"OLD" description:"Current servo ID"`
		New int `positional-arg-name:"NEW" description:"New servo ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *SetIDCommand) Execute(args []string) error {
	if !c.Yes && !confirm(
		fmt.Sprintf("Change servo ID %d to %d?", c.Args.Old, c.Args.New),
		"Only one servo may answer at the old ID.",
	) {
		return errors.New("aborted")
	}
	return withConn(func(ctx context.Context, conn *servo.Conn, _ *robot.Config) error {
		if err := servo.UpdateID(ctx, conn, c.Args.Old, c.Args.New); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Servo %d is now %d", c.Args.Old, c.Args.New)))
		return nil
	})
}

type ZeroCommand struct {
	Yes  bool     `short:"y" long:"yes" description:"Do not ask for confirmation"`
	Args MotorArg `positional-args:"yes" required:"yes"`
}

func (c *ZeroCommand) Execute(args []string) error {
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		id, err := cfg.Resolve(c.Args.Motor)
		if err != nil {
			return err
		}
		if !c.Yes && !confirm(fmt.Sprintf("Zero servo %d at its current position?", id), "") {
			return errors.New("aborted")
		}
		if err := servo.ZeroMotor(ctx, conn, id); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Servo %d zeroed", id)))
		return nil
	})
}

type EnableCommand struct {
	Args struct {
		Motors []string `positional-arg-name:"MOTOR" description:"Motor names or servo IDs (default: all configured)"`
	} `positional-args:"yes"`
}

func (c *EnableCommand) Execute(args []string) error {
	return setTorque(c.Args.Motors, true)
}

type DisableCommand struct {
	Args struct {
		Motors []string `positional-arg-name:"MOTOR" description:"Motor names or servo IDs (default: all configured)"`
	} `positional-args:"yes"`
}

func (c *DisableCommand) Execute(args []string) error {
	return setTorque(c.Args.Motors, false)
}

func setTorque(motors []string, on bool) error {
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		ids, err := resolveMotors(cfg, motors)
		if err != nil {
			return err
		}
		for _, id := range ids {
			err := retry(ctx, func() error {
				if on {
					return servo.Enable(ctx, conn, id)
				}
				return servo.Disable(ctx, conn, id)
			})
			if err != nil {
				return err
			}
		}
		state := "disabled"
		if on {
			state = "enabled"
		}
		fmt.Printf("Torque %s on %v\n", state, ids)
		return nil
	})
}

type GoalCommand struct {
	Normalized bool `short:"n" long:"normalized" description:"Read VALUE as a position in [-100, 100] over the calibrated range"`
	Args       struct {
		Motor string  `positional-arg-name:"MOTOR" description:"Motor name or servo ID"`
		Value float64 `positional-arg-name:"VALUE" description:"Goal angle in radians [0, 2π], or a normalized position with --normalized"`
	} `positional-args:"yes" required:"yes"`
}

func (c *GoalCommand) Execute(args []string) error {
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		id, err := cfg.Resolve(c.Args.Motor)
		if err != nil {
			return err
		}
		if !c.Normalized {
			return retry(ctx, func() error {
				return servo.WriteGoalPosition(ctx, conn, id, c.Args.Value)
			})
		}

		name, mc, ok := cfg.Calibration().ByID(id)
		if !ok {
			return fmt.Errorf("servo %d is not calibrated, run calibrate first", id)
		}
		arm := robot.NewArm(conn, robot.Calibration{name: mc})
		var from map[robot.MotorName]float64
		err = retry(ctx, func() (err error) {
			from, err = arm.ReadPositions(ctx)
			return err
		})
		if err != nil {
			return err
		}
		err = retry(ctx, func() error {
			return arm.WritePositions(ctx, map[robot.MotorName]float64{name: c.Args.Value})
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s: %.1f -> %.1f\n", name, from[name], c.Args.Value)
		return nil
	})
}

type TorqueLimitCommand struct {
	Args struct {
		Motor   string `positional-arg-name:"MOTOR" description:"Motor name or servo ID"`
		Percent string `positional-arg-name:"FRACTION" description:"New limit as a fraction of maximum (0-1); omit to read"`
	} `positional-args:"yes"`
}

func (c *TorqueLimitCommand) Execute(args []string) error {
	if c.Args.Motor == "" {
		return errors.New("missing MOTOR argument")
	}
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		id, err := cfg.Resolve(c.Args.Motor)
		if err != nil {
			return err
		}
		if c.Args.Percent == "" {
			var limit, ceiling float64
			err := retry(ctx, func() (err error) {
				limit, err = servo.ReadTorqueLimitPercent(ctx, conn, id)
				return err
			})
			if err != nil {
				return err
			}
			err = retry(ctx, func() (err error) {
				ceiling, err = servo.ReadMaxTorquePercent(ctx, conn, id)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Servo %d torque limit: %.1f%% (max torque %.1f%%)\n", id, limit*100, ceiling*100)
			return nil
		}
		limit, err := strconv.ParseFloat(c.Args.Percent, 64)
		if err != nil {
			return fmt.Errorf("%w: torque limit %q", servo.ErrInvalidArgument, c.Args.Percent)
		}
		return retry(ctx, func() error {
			return servo.WriteTorqueLimitPercent(ctx, conn, id, limit)
		})
	})
}
