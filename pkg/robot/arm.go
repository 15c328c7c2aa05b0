package robot

import (
	"context"
	"fmt"

	"github.com/gwillem/feetech/pkg/servo"
)

// Arm represents a robot arm with multiple servos on one bus.
type Arm struct {
	rw          servo.RegisterReadWriter
	calibration Calibration
}

// MotorStatus is a snapshot of one motor's registers.
type MotorStatus struct {
	ID          int     `json:"id"`
	Raw         int     `json:"raw"`
	Position    float64 `json:"position"`   // radians
	Normalized  float64 `json:"normalized"` // [-100, 100] over the calibrated range
	Goal        float64 `json:"goal"`       // radians
	Load        float64 `json:"load"`
	TorqueLimit float64 `json:"torque_limit"`
	Temperature int     `json:"temperature"`
	Voltage     float64 `json:"voltage"`
	Enabled     bool    `json:"enabled"`
}

// NewArm returns an arm for the calibrated motors reachable through rw.
func NewArm(rw servo.RegisterReadWriter, cal Calibration) *Arm {
	return &Arm{rw: rw, calibration: cal}
}

// Calibration returns the arm's calibration.
func (a *Arm) Calibration() Calibration {
	return a.calibration
}

// Enable enables torque on all servos.
func (a *Arm) Enable(ctx context.Context) error {
	for _, name := range a.calibration.Names() {
		if err := servo.Enable(ctx, a.rw, a.calibration[name].ID); err != nil {
			return fmt.Errorf("enable %s: %w", name, err)
		}
	}
	return nil
}

// Disable disables torque on all servos.
func (a *Arm) Disable(ctx context.Context) error {
	for _, name := range a.calibration.Names() {
		if err := servo.Disable(ctx, a.rw, a.calibration[name].ID); err != nil {
			return fmt.Errorf("disable %s: %w", name, err)
		}
	}
	return nil
}

// ReadRaw reads the present raw position of every motor.
func (a *Arm) ReadRaw(ctx context.Context) (map[MotorName]int, error) {
	raw := make(map[MotorName]int, len(a.calibration))
	for _, name := range a.calibration.Names() {
		pos, err := a.rw.ReadRegister(ctx, a.calibration[name].ID, servo.PresentPosition)
		if err != nil {
			return nil, fmt.Errorf("read %s position: %w", name, err)
		}
		raw[name] = pos
	}
	return raw, nil
}

// ReadPositions reads current positions from all motors.
// Returns normalized positions in the range [-100, 100].
func (a *Arm) ReadPositions(ctx context.Context) (map[MotorName]float64, error) {
	raw, err := a.ReadRaw(ctx)
	if err != nil {
		return nil, err
	}
	positions := make(map[MotorName]float64, len(raw))
	for name, pos := range raw {
		positions[name] = a.calibration[name].Normalize(pos)
	}
	return positions, nil
}

// WritePositions moves the named motors to normalized positions in the
// range [-100, 100]. Motors missing from the calibration are skipped.
func (a *Arm) WritePositions(ctx context.Context, positions map[MotorName]float64) error {
	for _, name := range a.calibration.Names() {
		norm, ok := positions[name]
		if !ok {
			continue
		}
		cal := a.calibration[name]
		angle := servo.RawToAngle(cal.Denormalize(norm))
		if err := servo.WriteGoalPosition(ctx, a.rw, cal.ID, angle); err != nil {
			return fmt.Errorf("write %s position: %w", name, err)
		}
	}
	return nil
}

// ReadStatus reads a status snapshot of every motor.
func (a *Arm) ReadStatus(ctx context.Context) (map[MotorName]MotorStatus, error) {
	status := make(map[MotorName]MotorStatus, len(a.calibration))
	for _, name := range a.calibration.Names() {
		st, err := ReadMotorStatus(ctx, a.rw, a.calibration[name])
		if err != nil {
			return nil, fmt.Errorf("read %s status: %w", name, err)
		}
		status[name] = st
	}
	return status, nil
}

// ReadMotorStatus reads the status registers of a single motor.
func ReadMotorStatus(ctx context.Context, rw servo.RegisterReadWriter, cal MotorCalibration) (MotorStatus, error) {
	st := MotorStatus{ID: cal.ID}
	var err error

	if st.Raw, err = rw.ReadRegister(ctx, cal.ID, servo.PresentPosition); err != nil {
		return st, err
	}
	st.Position = servo.RawToAngle(st.Raw)
	st.Normalized = cal.Normalize(st.Raw)

	if st.Goal, err = servo.ReadGoalPosition(ctx, rw, cal.ID); err != nil {
		return st, err
	}
	if st.Load, err = servo.ReadLoadPercent(ctx, rw, cal.ID); err != nil {
		return st, err
	}
	if st.TorqueLimit, err = servo.ReadTorqueLimitPercent(ctx, rw, cal.ID); err != nil {
		return st, err
	}
	if st.Temperature, err = servo.ReadTemp(ctx, rw, cal.ID); err != nil {
		return st, err
	}
	if st.Voltage, err = servo.ReadVoltage(ctx, rw, cal.ID); err != nil {
		return st, err
	}
	if st.Enabled, err = servo.Enabled(ctx, rw, cal.ID); err != nil {
		return st, err
	}
	return st, nil
}
