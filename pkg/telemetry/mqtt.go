package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gwillem/feetech/pkg/robot"
)

const publishTimeout = 2 * time.Second

// Client is the part of mqtt.Client used by Publisher.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Message is the JSON payload published for one motor.
type Message struct {
	Motor     robot.MotorName `json:"motor"`
	Timestamp time.Time       `json:"timestamp"`
	robot.MotorStatus
}

// Publisher publishes each motor's status to <topic>/<motor>.
type Publisher struct {
	client Client
	topic  string
	qos    byte
}

// NewPublisher returns a publisher writing below topic.
func NewPublisher(client Client, topic string, qos byte) *Publisher {
	return &Publisher{client: client, topic: topic, qos: qos}
}

// Publish sends one message per motor in s.
func (p *Publisher) Publish(s State) error {
	for name, st := range s.Status {
		payload, err := json.Marshal(Message{Motor: name, Timestamp: s.Timestamp, MotorStatus: st})
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		topic := fmt.Sprintf("%s/%s", p.topic, name)
		token := p.client.Publish(topic, p.qos, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish %s: timeout", topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}
	return nil
}

// clientOptions builds the paho options for cfg. Connection events go to
// logger.
func clientOptions(cfg robot.MQTTConfig, logger *log.Logger) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Printf("connected to MQTT broker %s", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Printf("connection to %s lost: %v", cfg.Broker, err)
	})
	return opts
}

// Connect connects to the broker in cfg. A nil logger writes to stderr.
func Connect(cfg robot.MQTTConfig, logger *log.Logger) (mqtt.Client, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "mqtt: ", log.LstdFlags)
	}
	client := mqtt.NewClient(clientOptions(cfg, logger))
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	return client, nil
}
