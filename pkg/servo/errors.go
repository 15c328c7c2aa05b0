package servo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gwillem/feetech/pkg/scs"
)

var (
	// ErrNotConnected is returned when a register is accessed before Connect.
	ErrNotConnected = errors.New("not connected, call Connect first")

	// ErrAlreadyConnected is returned by Connect on an open connection.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrInvalidArgument is wrapped by errors for out of domain inputs.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Device error bits reported in the status packet.
const (
	ErrBitVoltage     byte = 1 << 0
	ErrBitAngle       byte = 1 << 1
	ErrBitOverheat    byte = 1 << 2
	ErrBitOvercurrent byte = 1 << 3
	ErrBitOverload    byte = 1 << 5
)

// CommError reports a failed exchange on the bus. It is usually transient.
type CommError struct {
	Status scs.CommResult
}

func (e *CommError) Error() string {
	return fmt.Sprintf("communication failed: %s (%d)", e.Status, int(e.Status))
}

// DeviceError reports a nonzero error byte from the servo.
type DeviceError struct {
	Code byte
}

func (e *DeviceError) Error() string {
	var names []string
	for bit := byte(1); bit != 0; bit <<= 1 {
		if e.Code&bit == 0 {
			continue
		}
		switch bit {
		case ErrBitVoltage:
			names = append(names, "input voltage")
		case ErrBitAngle:
			names = append(names, "angle limit")
		case ErrBitOverheat:
			names = append(names, "overheat")
		case ErrBitOvercurrent:
			names = append(names, "overcurrent")
		case ErrBitOverload:
			names = append(names, "overload")
		default:
			names = append(names, fmt.Sprintf("bit %#02x", bit))
		}
	}
	return fmt.Sprintf("device error %d: %s", e.Code, strings.Join(names, ", "))
}

// IsRetryable reports whether err is a communication failure that may
// succeed when repeated.
func IsRetryable(err error) bool {
	var ce *CommError
	return errors.As(err, &ce)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
