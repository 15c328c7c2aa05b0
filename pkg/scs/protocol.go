// Package scs is the wire layer under package servo.
//
// It drives a github.com/hipsterbrown/feetech-servo bus and reports every
// exchange as a CommResult plus the device error byte, without
// interpreting either.
package scs

import (
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

const (
	// BroadcastID addresses every servo on the bus. Servos never answer it.
	BroadcastID = feetech.BroadcastID
	// MaxID is the highest addressable servo id.
	MaxID = feetech.MaxServoID
)

// Protocol selects the byte order of multi-byte register values.
type Protocol int

const (
	// ProtocolSTS is used by STS/SMS servos (little endian).
	ProtocolSTS Protocol = feetech.ProtocolSTS
	// ProtocolSCS is used by SCS servos (big endian).
	ProtocolSCS Protocol = feetech.ProtocolSCS
)

func (p Protocol) String() string {
	switch p {
	case ProtocolSTS:
		return "sts"
	case ProtocolSCS:
		return "scs"
	default:
		return fmt.Sprintf("protocol(%d)", int(p))
	}
}

// ParseProtocol maps "sts" or "scs" to a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	switch s {
	case "", "sts":
		return ProtocolSTS, nil
	case "scs":
		return ProtocolSCS, nil
	}
	return 0, fmt.Errorf("unknown protocol %q", s)
}
