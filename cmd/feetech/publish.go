package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gwillem/feetech/pkg/robot"
	"github.com/gwillem/feetech/pkg/servo"
	"github.com/gwillem/feetech/pkg/telemetry"
)

type PublishCommand struct {
	Broker string `long:"broker" description:"MQTT broker URL (default: mqtt.broker from the configuration)"`
	Topic  string `long:"topic" description:"Topic prefix (default: mqtt.topic from the configuration)"`
	Hz     int    `long:"hz" description:"Polling frequency (default: telemetry.hz from the configuration)"`
}

func (c *PublishCommand) Execute(args []string) error {
	return withConn(func(ctx context.Context, conn *servo.Conn, cfg *robot.Config) error {
		mqttCfg := cfg.MQTT
		if c.Broker != "" {
			mqttCfg.Broker = c.Broker
		}
		if c.Topic != "" {
			mqttCfg.Topic = c.Topic
		}
		hz := c.Hz
		if hz == 0 {
			hz = cfg.Telemetry.Hz
		}

		logger := log.New(os.Stderr, dimStyle.Render("mqtt")+" ", 0)
		client, err := telemetry.Connect(mqttCfg, logger)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)

		pub := telemetry.NewPublisher(client, mqttCfg.Topic, mqttCfg.QoS)
		poller := telemetry.NewPoller(robot.NewArm(conn, cfg.Calibration()), telemetry.Config{
			Hz:    hz,
			Sinks: []telemetry.Sink{pub},
		})

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			for {
				select {
				case msg := <-poller.Logs():
					fmt.Println(dimStyle.Render(msg))
				case <-poller.States():
				case <-ctx.Done():
					return
				}
			}
		}()

		fmt.Printf("Publishing to %s under %s/<motor>, Ctrl+C to stop\n", mqttCfg.Broker, mqttCfg.Topic)
		if err := poller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
}
