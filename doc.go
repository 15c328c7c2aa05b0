// Package feetech drives Feetech serial bus servos (STS/SCS series) from a
// host computer.
//
// # Installation
//
//	go install github.com/gwillem/feetech/cmd/feetech@latest
//
// # Usage
//
// Point the tool at the bus adapter, then address servos by ID or by the
// motor names from the configuration file:
//
//	feetech --port /dev/ttyACM0 status
//	feetech set-id 1 7
//	feetech zero gripper
//	feetech goal shoulder_pan 3.14
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/feetech: CLI for configuring, moving and monitoring servos
//   - pkg/servo: Register access and motor operations
//   - pkg/scs: Bus transport over feetech-servo
//   - pkg/robot: Configuration, calibration and multi-motor arm
//   - pkg/telemetry: Status polling and MQTT publishing
package feetech
