package scs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// CommResult is the outcome of one request/response exchange on the bus.
type CommResult int

// Communication results. The values match the vendor SDK.
const (
	CommSuccess      CommResult = 0
	CommPortBusy     CommResult = -1
	CommTxFail       CommResult = -2
	CommRxFail       CommResult = -3
	CommTxError      CommResult = -4
	CommRxWaiting    CommResult = -5
	CommRxTimeout    CommResult = -6
	CommRxCorrupt    CommResult = -7
	CommNotAvailable CommResult = -9
)

func (r CommResult) String() string {
	switch r {
	case CommSuccess:
		return "success"
	case CommPortBusy:
		return "port busy"
	case CommTxFail:
		return "tx failed"
	case CommRxFail:
		return "rx failed"
	case CommTxError:
		return "incorrect instruction packet"
	case CommRxWaiting:
		return "rx waiting"
	case CommRxTimeout:
		return "rx timeout"
	case CommRxCorrupt:
		return "rx corrupt"
	case CommNotAvailable:
		return "port not available"
	default:
		return fmt.Sprintf("comm result %d", int(r))
	}
}

// classify splits a bus error into a communication result and the status
// byte the servo sent. A servo that answered with error flags set counts as
// a successful exchange.
func classify(err error) (CommResult, byte) {
	if err == nil {
		return CommSuccess, 0
	}
	if se, ok := feetech.GetServoError(err); ok && se.Status.HasError() {
		return CommSuccess, byte(se.Status)
	}

	var (
		status feetech.StatusError
		tx     *txError
		rx     *rxError
	)
	switch {
	case errors.As(err, &status):
		return CommSuccess, byte(status)
	case errors.As(err, &tx):
		return CommTxFail, 0
	case errors.As(err, &rx):
		return CommRxFail, 0
	case errors.Is(err, feetech.ErrBusClosed):
		return CommNotAvailable, 0
	case errors.Is(err, feetech.ErrInvalidID):
		return CommTxError, 0
	case errors.Is(err, feetech.ErrNoResponse),
		errors.Is(err, feetech.ErrTimeout),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return CommRxTimeout, 0
	default:
		// checksum, header, length or id mismatch in the status packet
		return CommRxCorrupt, 0
	}
}
