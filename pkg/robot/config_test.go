package robot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gwillem/feetech/pkg/scs"
	"github.com/gwillem/feetech/pkg/servo"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Baud != scs.DefaultBaudRate {
		t.Errorf("Baud = %d, want %d", cfg.Baud, scs.DefaultBaudRate)
	}
	if cfg.Timeout != scs.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, scs.DefaultTimeout)
	}
	if cfg.Telemetry.Hz != 10 {
		t.Errorf("Telemetry.Hz = %d, want 10", cfg.Telemetry.Hz)
	}
	if len(cfg.Calibration()) != 6 {
		t.Errorf("default calibration has %d motors, want 6", len(cfg.Calibration()))
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.yaml")
	data := `port: /dev/ttyACM0
protocol: scs
timeout: 250ms
motors:
  pan:
    id: 3
    range_min: 100
    range_max: 900
mqtt:
  topic: lab/arm
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Port != "/dev/ttyACM0" || cfg.Timeout != 250*time.Millisecond {
		t.Errorf("Port, Timeout = %q, %v", cfg.Port, cfg.Timeout)
	}
	want := Calibration{"pan": {ID: 3, RangeMin: 100, RangeMax: 900}}
	if diff := cmp.Diff(want, cfg.Motors); diff != "" {
		t.Errorf("Motors mismatch (-want +got):\n%s", diff)
	}
	if cfg.MQTT.Topic != "lab/arm" || cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}

	bus, err := cfg.BusConfig()
	if err != nil {
		t.Fatalf("BusConfig: %v", err)
	}
	if bus.Protocol != scs.ProtocolSCS || bus.BaudRate != scs.DefaultBaudRate {
		t.Errorf("BusConfig = %+v", bus)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("FEETECH_PORT", "/dev/ttyUSB1")
	t.Setenv("FEETECH_MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("FEETECH_BAUD", "115200")

	cfg, err := LoadConfigFrom("")
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Port != "/dev/ttyUSB1" || cfg.Baud != 115200 || cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestConfigSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"cfg.yaml", "cfg.json"} {
		path := filepath.Join(t.TempDir(), name)
		cfg := defaultConfig()
		cfg.Port = "/dev/ttyACM1"
		cfg.Motors = Calibration{Gripper: {ID: 6, RangeMin: 2000, RangeMax: 3300}}

		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo(%s): %v", name, err)
		}
		got, err := LoadConfigFrom(path)
		if err != nil {
			t.Fatalf("LoadConfigFrom(%s): %v", name, err)
		}
		if diff := cmp.Diff(&cfg, got); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestResolve(t *testing.T) {
	cfg := defaultConfig()

	tests := []struct {
		in   string
		want int
	}{
		{"gripper", 6},
		{"shoulder_pan", 1},
		{"12", 12},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := cfg.Resolve(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("Resolve(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}

	for _, bad := range []string{"elbow", "254", "-1"} {
		if _, err := cfg.Resolve(bad); !errors.Is(err, servo.ErrInvalidArgument) {
			t.Errorf("Resolve(%q) = %v, want ErrInvalidArgument", bad, err)
		}
	}
}

func TestBusConfigRequiresPort(t *testing.T) {
	cfg := defaultConfig()
	if _, err := cfg.BusConfig(); err == nil {
		t.Error("BusConfig without port should fail")
	}
}
