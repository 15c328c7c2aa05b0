package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config  string `short:"c" long:"config" default:"feetech.yaml" description:"Configuration file (YAML, or JSON by extension)"`
	Port    string `short:"p" long:"port" description:"Serial port, overrides the configuration"`
	Retries int    `long:"retries" default:"3" description:"Attempts per register access on communication errors"`

	Ports       PortsCommand       `command:"ports" description:"List serial ports"`
	Ping        PingCommand        `command:"ping" description:"Check which servos answer and report their model"`
	SetID       SetIDCommand       `command:"set-id" description:"Change a servo's ID"`
	Zero        ZeroCommand        `command:"zero" description:"Make a servo's current position its zero"`
	Enable      EnableCommand      `command:"enable" description:"Enable torque"`
	Disable     DisableCommand     `command:"disable" description:"Disable torque"`
	Goal        GoalCommand        `command:"goal" description:"Move a servo to an angle in radians or a normalized position"`
	TorqueLimit TorqueLimitCommand `command:"torque-limit" description:"Read or set the torque limit"`
	Status      StatusCommand      `command:"status" description:"Show status of all configured motors"`
	Calibrate   CalibrateCommand   `command:"calibrate" description:"Record the range of motion of each motor"`
	Monitor     MonitorCommand     `command:"monitor" description:"Live view of motor positions"`
	Publish     PublishCommand     `command:"publish" description:"Publish motor status to MQTT"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "feetech - configure and drive Feetech serial bus servos"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
