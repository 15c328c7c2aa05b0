package servo

import (
	"context"
	"fmt"
	"math"
)

// Resolution is the number of position steps per revolution.
const Resolution = 4096

const (
	lockOff = 0
	lockOn  = 1

	// loadDirection is added to the load magnitude when the load opposes
	// the default direction.
	loadDirection = 1000
)

// AngleToRaw converts radians to position steps, truncating toward zero.
func AngleToRaw(angle float64) int {
	return int(angle / (2 * math.Pi) * Resolution)
}

// RawToAngle converts position steps to radians.
func RawToAngle(raw int) float64 {
	return float64(raw) * (2 * math.Pi) / Resolution
}

// UpdateID moves a motor from oldID to newID. The motor answers at newID
// once the ID write lands, so the lock is restored there. Both IDs are
// checked before anything is sent; a sequence interrupted on the bus is not
// rolled back.
func UpdateID(ctx context.Context, rw RegisterReadWriter, oldID, newID int) error {
	for _, id := range []int{oldID, newID} {
		if err := checkID(id); err != nil {
			return err
		}
	}
	if err := rw.WriteRegister(ctx, oldID, WriteLock, lockOff); err != nil {
		return fmt.Errorf("unlock motor %d: %w", oldID, err)
	}
	if err := rw.WriteRegister(ctx, oldID, ID, newID); err != nil {
		return fmt.Errorf("set id of motor %d to %d: %w", oldID, newID, err)
	}
	if err := rw.WriteRegister(ctx, newID, WriteLock, lockOn); err != nil {
		return fmt.Errorf("lock motor %d: %w", newID, err)
	}
	return nil
}

// ZeroOffset returns the position correction that makes raw position pos
// the new zero. Bit 11 of the correction register is its sign.
func ZeroOffset(pos int) int {
	if pos <= 2047 {
		return pos
	}
	return 2048 + Resolution - pos
}

// ZeroMotor makes the motor's current position its zero position.
func ZeroMotor(ctx context.Context, rw RegisterReadWriter, id int) error {
	if err := rw.WriteRegister(ctx, id, PositionCorrection, 0); err != nil {
		return fmt.Errorf("clear position correction: %w", err)
	}
	pos, err := rw.ReadRegister(ctx, id, PresentPosition)
	if err != nil {
		return fmt.Errorf("read position: %w", err)
	}
	offset := ZeroOffset(pos)

	if err := rw.WriteRegister(ctx, id, WriteLock, lockOff); err != nil {
		return fmt.Errorf("unlock motor %d: %w", id, err)
	}
	if err := rw.WriteRegister(ctx, id, PositionCorrection, offset); err != nil {
		return fmt.Errorf("write position correction: %w", err)
	}
	if err := rw.WriteRegister(ctx, id, WriteLock, lockOn); err != nil {
		return fmt.Errorf("lock motor %d: %w", id, err)
	}
	return nil
}

// Enable turns on torque.
func Enable(ctx context.Context, rw RegisterReadWriter, id int) error {
	return rw.WriteRegister(ctx, id, TorqueEnable, 1)
}

// Disable turns off torque.
func Disable(ctx context.Context, rw RegisterReadWriter, id int) error {
	return rw.WriteRegister(ctx, id, TorqueEnable, 0)
}

// Enabled reports whether torque is on.
func Enabled(ctx context.Context, rw RegisterReadWriter, id int) (bool, error) {
	v, err := rw.ReadRegister(ctx, id, TorqueEnable)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// WriteGoalPosition commands the motor to angle, in radians within [0, 2π].
func WriteGoalPosition(ctx context.Context, rw RegisterReadWriter, id int, angle float64) error {
	if !(angle >= 0 && angle <= 2*math.Pi) {
		return invalidArgument("goal position %g outside [0, 2π]", angle)
	}
	return rw.WriteRegister(ctx, id, GoalPosition, AngleToRaw(angle))
}

// ReadGoalPosition returns the commanded position in radians.
func ReadGoalPosition(ctx context.Context, rw RegisterReadWriter, id int) (float64, error) {
	raw, err := rw.ReadRegister(ctx, id, GoalPosition)
	if err != nil {
		return 0, err
	}
	return RawToAngle(raw), nil
}

// ReadPresentPosition returns the measured position in radians.
func ReadPresentPosition(ctx context.Context, rw RegisterReadWriter, id int) (float64, error) {
	raw, err := rw.ReadRegister(ctx, id, PresentPosition)
	if err != nil {
		return 0, err
	}
	return RawToAngle(raw), nil
}

// ReadTorqueLimitPercent returns the torque limit as a fraction of maximum.
func ReadTorqueLimitPercent(ctx context.Context, rw RegisterReadWriter, id int) (float64, error) {
	raw, err := rw.ReadRegister(ctx, id, TorqueLimit)
	if err != nil {
		return 0, err
	}
	return float64(raw) / 1000, nil
}

// WriteTorqueLimitPercent sets the torque limit as a fraction of maximum.
func WriteTorqueLimitPercent(ctx context.Context, rw RegisterReadWriter, id int, limit float64) error {
	if math.IsNaN(limit) {
		return invalidArgument("torque limit is NaN")
	}
	return rw.WriteRegister(ctx, id, TorqueLimit, int(limit*1000))
}

// ReadMaxTorquePercent returns the EEPROM torque ceiling as a fraction.
func ReadMaxTorquePercent(ctx context.Context, rw RegisterReadWriter, id int) (float64, error) {
	raw, err := rw.ReadRegister(ctx, id, MaxTorque)
	if err != nil {
		return 0, err
	}
	return float64(raw) / 1000, nil
}

// ReadLoadPercent returns the load magnitude as a fraction of maximum.
// The direction bit is dropped.
func ReadLoadPercent(ctx context.Context, rw RegisterReadWriter, id int) (float64, error) {
	raw, err := rw.ReadRegister(ctx, id, CurrentLoad)
	if err != nil {
		return 0, err
	}
	if raw > loadDirection {
		raw -= loadDirection
	}
	return float64(raw) / 1000, nil
}

// ReadTemp returns the temperature in degrees Celsius.
func ReadTemp(ctx context.Context, rw RegisterReadWriter, id int) (int, error) {
	return rw.ReadRegister(ctx, id, CurrentTemperature)
}

// ReadVoltage returns the input voltage in volts.
func ReadVoltage(ctx context.Context, rw RegisterReadWriter, id int) (float64, error) {
	raw, err := rw.ReadRegister(ctx, id, CurrentVoltage)
	if err != nil {
		return 0, err
	}
	return float64(raw) / 10, nil
}
