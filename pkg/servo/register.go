// Package servo provides register level access to Feetech bus servos and
// the motor operations built on it.
//
// A Conn wraps a Transport (normally *scs.Handler). Every ReadRegister and
// WriteRegister call is one request/response exchange; nothing is cached.
// The motor operations (UpdateID, ZeroMotor, WriteGoalPosition, ...) are
// plain functions over RegisterReadWriter and hold no state.
package servo

import "fmt"

// Width is the size of a register on the wire.
type Width int

const (
	OneByte Width = 1
	TwoByte Width = 2
)

// Max returns the largest value a register of width w can hold.
func (w Width) Max() int {
	switch w {
	case OneByte:
		return 0xFF
	case TwoByte:
		return 0xFFFF
	}
	return -1
}

// Register identifies a servo control table entry.
type Register int

const (
	ID Register = iota
	MaxTorque
	PositionCorrection
	TorqueEnable
	GoalPosition
	TorqueLimit
	WriteLock
	PresentPosition
	CurrentLoad
	CurrentVoltage
	CurrentTemperature

	numRegisters
)

type registerInfo struct {
	name    string
	address byte
	width   Width
}

var registerTable = [numRegisters]registerInfo{
	ID:                 {"ID", 5, OneByte},
	MaxTorque:          {"MaxTorque", 16, TwoByte},
	PositionCorrection: {"PositionCorrection", 31, TwoByte},
	// One byte on purpose, even though some host tools write it as a word:
	// a word write would also overwrite Acceleration at 41.
	TorqueEnable:       {"TorqueEnable", 40, OneByte},
	GoalPosition:       {"GoalPosition", 42, TwoByte},
	TorqueLimit:        {"TorqueLimit", 48, TwoByte},
	WriteLock:          {"WriteLock", 55, OneByte},
	PresentPosition:    {"PresentPosition", 56, TwoByte},
	CurrentLoad:        {"CurrentLoad", 60, TwoByte},
	CurrentVoltage:     {"CurrentVoltage", 62, OneByte},
	CurrentTemperature: {"CurrentTemperature", 63, OneByte},
}

func (r Register) valid() bool {
	return r >= 0 && r < numRegisters
}

// Address returns the register's offset in the control table.
func (r Register) Address() byte {
	if !r.valid() {
		return 0
	}
	return registerTable[r].address
}

// Width returns the register's size, or 0 for an unknown register.
func (r Register) Width() Width {
	if !r.valid() {
		return 0
	}
	return registerTable[r].width
}

func (r Register) String() string {
	if !r.valid() {
		return fmt.Sprintf("Register(%d)", int(r))
	}
	return registerTable[r].name
}

// Registers returns every known register in address order.
func Registers() []Register {
	regs := make([]Register, 0, numRegisters)
	for r := Register(0); r < numRegisters; r++ {
		regs = append(regs, r)
	}
	return regs
}
