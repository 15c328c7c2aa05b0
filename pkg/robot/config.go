package robot

import (
	encjson "encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	yml "gopkg.in/yaml.v2"

	"github.com/gwillem/feetech/pkg/scs"
	"github.com/gwillem/feetech/pkg/servo"
)

const (
	DefaultConfigFile = "feetech.yaml"
	envPrefix         = "FEETECH_"
)

// Config holds the bus, motor and telemetry settings.
type Config struct {
	Port      string          `koanf:"port" yaml:"port" json:"port"`
	Baud      int             `koanf:"baud" yaml:"baud" json:"baud"`
	Protocol  string          `koanf:"protocol" yaml:"protocol" json:"protocol"`
	Timeout   time.Duration   `koanf:"timeout" yaml:"timeout" json:"timeout"`
	Motors    Calibration     `koanf:"motors" yaml:"motors,omitempty" json:"motors,omitempty"`
	MQTT      MQTTConfig      `koanf:"mqtt" yaml:"mqtt" json:"mqtt"`
	Telemetry TelemetryConfig `koanf:"telemetry" yaml:"telemetry" json:"telemetry"`
}

// MQTTConfig configures the telemetry publisher.
type MQTTConfig struct {
	Broker   string `koanf:"broker" yaml:"broker" json:"broker"`
	Topic    string `koanf:"topic" yaml:"topic" json:"topic"`
	ClientID string `koanf:"clientid" yaml:"clientid" json:"clientid"`
	QoS      byte   `koanf:"qos" yaml:"qos" json:"qos"`
}

// TelemetryConfig configures polling.
type TelemetryConfig struct {
	Hz int `koanf:"hz" yaml:"hz" json:"hz"`
}

func defaultConfig() Config {
	return Config{
		Baud:     scs.DefaultBaudRate,
		Protocol: scs.ProtocolSTS.String(),
		Timeout:  scs.DefaultTimeout,
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			Topic:    "feetech",
			ClientID: "feetech-cli",
		},
		Telemetry: TelemetryConfig{Hz: 10},
	}
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom layers defaults, the file at path (YAML or JSON by
// extension, may be missing) and FEETECH_* environment variables.
// FEETECH_MQTT_BROKER sets mqtt.broker.
func LoadConfigFrom(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		var parser koanf.Parser = yaml.Parser()
		if strings.EqualFold(filepath.Ext(path), ".json") {
			parser = json.Parser()
		}
		if err := k.Load(file.Provider(path), parser); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// SaveTo writes the configuration to path, as JSON if the extension is
// .json and YAML otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = encjson.MarshalIndent(c, "", "  ")
	} else {
		data, err = yml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// BusConfig returns the serial settings for the scs transport.
func (c *Config) BusConfig() (scs.Config, error) {
	if c.Port == "" {
		return scs.Config{}, errors.New("no serial port configured")
	}
	proto, err := scs.ParseProtocol(c.Protocol)
	if err != nil {
		return scs.Config{}, err
	}
	return scs.Config{
		Port:     c.Port,
		BaudRate: c.Baud,
		Protocol: proto,
		Timeout:  c.Timeout,
	}, nil
}

// Calibration returns the configured motors, or the SO-101 defaults.
func (c *Config) Calibration() Calibration {
	if len(c.Motors) == 0 {
		return DefaultCalibration()
	}
	return c.Motors
}

// Resolve maps a motor name or a numeric servo ID to a servo ID.
func (c *Config) Resolve(s string) (int, error) {
	if mc, ok := c.Calibration()[MotorName(s)]; ok {
		return mc.ID, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown motor %q", servo.ErrInvalidArgument, s)
	}
	if id < 0 || id > scs.MaxID {
		return 0, fmt.Errorf("%w: motor id %d out of range [0, %d]", servo.ErrInvalidArgument, id, scs.MaxID)
	}
	return id, nil
}
