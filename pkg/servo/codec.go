package servo

import (
	"context"

	"github.com/gwillem/feetech/pkg/scs"
)

// Transport performs framed, checksummed exchanges with servos.
// *scs.Handler implements it.
type Transport interface {
	Open() error
	Close() error
	Read1(ctx context.Context, id, addr byte) (byte, scs.CommResult, byte)
	Read2(ctx context.Context, id, addr byte) (uint16, scs.CommResult, byte)
	Write1(ctx context.Context, id, addr, value byte) (scs.CommResult, byte)
	Write2(ctx context.Context, id, addr byte, value uint16) (scs.CommResult, byte)
	Ping(ctx context.Context, id byte) (int, scs.CommResult, byte)
}

// outcome classifies a finished exchange.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeLowVoltage
)

func checkID(id int) error {
	if id < 0 || id > scs.MaxID {
		return invalidArgument("motor id %d out of range [0, %d]", id, scs.MaxID)
	}
	return nil
}

func checkTarget(id int, r Register) error {
	if err := checkID(id); err != nil {
		return err
	}
	if r.Width() == 0 {
		return invalidArgument("unknown register %s", r)
	}
	return nil
}

// encodeRead picks the transport read matching the register width.
func encodeRead(t Transport, id int, r Register) (func(context.Context) (int, scs.CommResult, byte), error) {
	if err := checkTarget(id, r); err != nil {
		return nil, err
	}
	addr := r.Address()
	if r.Width() == TwoByte {
		return func(ctx context.Context) (int, scs.CommResult, byte) {
			v, res, code := t.Read2(ctx, byte(id), addr)
			return int(v), res, code
		}, nil
	}
	return func(ctx context.Context) (int, scs.CommResult, byte) {
		v, res, code := t.Read1(ctx, byte(id), addr)
		return int(v), res, code
	}, nil
}

// encodeWrite picks the transport write matching the register width.
// Values that do not fit the register are rejected, never truncated.
func encodeWrite(t Transport, id int, r Register, value int) (func(context.Context) (scs.CommResult, byte), error) {
	if err := checkTarget(id, r); err != nil {
		return nil, err
	}
	if value < 0 || value > r.Width().Max() {
		return nil, invalidArgument("value %d does not fit %s (max %d)", value, r, r.Width().Max())
	}
	addr := r.Address()
	if r.Width() == TwoByte {
		return func(ctx context.Context) (scs.CommResult, byte) {
			return t.Write2(ctx, byte(id), addr, uint16(value))
		}, nil
	}
	return func(ctx context.Context) (scs.CommResult, byte) {
		return t.Write1(ctx, byte(id), addr, byte(value))
	}, nil
}

// decode turns a transport result into an outcome or an error.
// Low voltage is only tolerated on writes.
func decode(res scs.CommResult, code byte, write bool) (outcome, error) {
	if res != scs.CommSuccess {
		return outcomeOK, &CommError{Status: res}
	}
	switch {
	case code == 0:
		return outcomeOK, nil
	case code == ErrBitVoltage && write:
		return outcomeLowVoltage, nil
	default:
		return outcomeOK, &DeviceError{Code: code}
	}
}
