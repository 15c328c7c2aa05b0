package servo

import (
	"context"
	"errors"

	"github.com/gwillem/feetech/pkg/scs"
)

// call records one transport exchange.
type call struct {
	Op    string // read1, read2, write1, write2, ping
	ID    int
	Addr  byte
	Value int
}

// fakeBus is an in-memory Transport backed by a control table per motor.
type fakeBus struct {
	regs    map[int]map[byte]int
	calls   []call
	opened  int
	closed  int
	openErr error
	model   int // answered by every motor that has a table

	// next result overrides, consumed by the following exchange
	res  scs.CommResult
	code byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{regs: make(map[int]map[byte]int)}
}

func (b *fakeBus) set(id int, r Register, v int) {
	if b.regs[id] == nil {
		b.regs[id] = make(map[byte]int)
	}
	b.regs[id][r.Address()] = v
}

func (b *fakeBus) get(id int, r Register) int {
	return b.regs[id][r.Address()]
}

func (b *fakeBus) fail(res scs.CommResult, code byte) {
	b.res, b.code = res, code
}

func (b *fakeBus) outcome() (scs.CommResult, byte) {
	res, code := b.res, b.code
	b.res, b.code = scs.CommSuccess, 0
	return res, code
}

func (b *fakeBus) Open() error {
	if b.openErr != nil {
		return b.openErr
	}
	b.opened++
	return nil
}

func (b *fakeBus) Close() error {
	b.closed++
	return nil
}

func (b *fakeBus) Read1(_ context.Context, id, addr byte) (byte, scs.CommResult, byte) {
	b.calls = append(b.calls, call{Op: "read1", ID: int(id), Addr: addr})
	res, code := b.outcome()
	return byte(b.regs[int(id)][addr]), res, code
}

func (b *fakeBus) Read2(_ context.Context, id, addr byte) (uint16, scs.CommResult, byte) {
	b.calls = append(b.calls, call{Op: "read2", ID: int(id), Addr: addr})
	res, code := b.outcome()
	return uint16(b.regs[int(id)][addr]), res, code
}

func (b *fakeBus) Write1(_ context.Context, id, addr, value byte) (scs.CommResult, byte) {
	b.calls = append(b.calls, call{Op: "write1", ID: int(id), Addr: addr, Value: int(value)})
	return b.store(int(id), addr, int(value))
}

func (b *fakeBus) Write2(_ context.Context, id, addr byte, value uint16) (scs.CommResult, byte) {
	b.calls = append(b.calls, call{Op: "write2", ID: int(id), Addr: addr, Value: int(value)})
	return b.store(int(id), addr, int(value))
}

func (b *fakeBus) Ping(_ context.Context, id byte) (int, scs.CommResult, byte) {
	b.calls = append(b.calls, call{Op: "ping", ID: int(id)})
	res, code := b.outcome()
	if _, ok := b.regs[int(id)]; !ok && res == scs.CommSuccess {
		return 0, scs.CommRxTimeout, 0
	}
	return b.model, res, code
}

func (b *fakeBus) store(id int, addr byte, v int) (scs.CommResult, byte) {
	res, code := b.outcome()
	if res != scs.CommSuccess {
		return res, code
	}
	if b.regs[id] == nil {
		b.regs[id] = make(map[byte]int)
	}
	b.regs[id][addr] = v
	// Writing the ID register moves the motor's whole table.
	if addr == ID.Address() && v != id {
		b.regs[v] = b.regs[id]
		delete(b.regs, id)
	}
	return res, code
}

var errOpen = errors.New("no such port")
