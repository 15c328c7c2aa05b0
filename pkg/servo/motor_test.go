package servo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gwillem/feetech/pkg/scs"
)

func writes(calls []call) []call {
	var w []call
	for _, c := range calls {
		if c.Op == "write1" || c.Op == "write2" {
			w = append(w, c)
		}
	}
	return w
}

func TestUpdateID(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)

	if err := UpdateID(context.Background(), c, 1, 2); err != nil {
		t.Fatalf("UpdateID: %v", err)
	}
	want := []call{
		{Op: "write1", ID: 1, Addr: WriteLock.Address(), Value: 0},
		{Op: "write1", ID: 1, Addr: ID.Address(), Value: 2},
		{Op: "write1", ID: 2, Addr: WriteLock.Address(), Value: 1},
	}
	if diff := cmp.Diff(want, bus.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateIDStopsOnFailure(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)
	bus.fail(scs.CommRxTimeout, 0)

	err := UpdateID(context.Background(), c, 1, 2)
	if !IsRetryable(err) {
		t.Fatalf("UpdateID = %v, want CommError", err)
	}
	if len(bus.calls) != 1 {
		t.Errorf("made %d calls after the first failed, want 1", len(bus.calls))
	}
}

func TestUpdateIDRejectsBadIDs(t *testing.T) {
	tests := []struct {
		oldID, newID int
	}{
		{1, scs.BroadcastID},
		{1, 300},
		{1, -1},
		{scs.BroadcastID, 2},
		{-5, 2},
	}
	for _, tt := range tests {
		bus := newFakeBus()
		c := connected(t, bus)

		err := UpdateID(context.Background(), c, tt.oldID, tt.newID)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("UpdateID(%d, %d) = %v, want ErrInvalidArgument", tt.oldID, tt.newID, err)
		}
		if len(bus.calls) != 0 {
			t.Errorf("UpdateID(%d, %d) sent %v before rejecting", tt.oldID, tt.newID, bus.calls)
		}
	}
}

func TestZeroOffset(t *testing.T) {
	tests := []struct {
		pos, want int
	}{
		{0, 0},
		{1000, 1000},
		{2047, 2047},
		{2048, 4096},
		{3000, 3144},
		{4095, 2049},
	}
	for _, tt := range tests {
		if got := ZeroOffset(tt.pos); got != tt.want {
			t.Errorf("ZeroOffset(%d) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestZeroMotor(t *testing.T) {
	for _, tt := range []struct{ pos, offset int }{{1000, 1000}, {3000, 3144}} {
		bus := newFakeBus()
		c := connected(t, bus)
		bus.set(4, PositionCorrection, 77)
		bus.set(4, PresentPosition, tt.pos)

		if err := ZeroMotor(context.Background(), c, 4); err != nil {
			t.Fatalf("ZeroMotor: %v", err)
		}
		want := []call{
			{Op: "write2", ID: 4, Addr: PositionCorrection.Address(), Value: 0},
			{Op: "read2", ID: 4, Addr: PresentPosition.Address()},
			{Op: "write1", ID: 4, Addr: WriteLock.Address(), Value: 0},
			{Op: "write2", ID: 4, Addr: PositionCorrection.Address(), Value: tt.offset},
			{Op: "write1", ID: 4, Addr: WriteLock.Address(), Value: 1},
		}
		if diff := cmp.Diff(want, bus.calls); diff != "" {
			t.Errorf("pos %d: calls mismatch (-want +got):\n%s", tt.pos, diff)
		}
	}
}

func TestEnableDisable(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)
	ctx := context.Background()

	if err := Enable(ctx, c, 3); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if on, err := Enabled(ctx, c, 3); err != nil || !on {
		t.Errorf("Enabled after Enable = %v, %v", on, err)
	}
	if err := Disable(ctx, c, 3); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if on, err := Enabled(ctx, c, 3); err != nil || on {
		t.Errorf("Enabled after Disable = %v, %v", on, err)
	}
	bus.set(3, TorqueEnable, 2)
	if on, _ := Enabled(ctx, c, 3); on {
		t.Error("Enabled should be true only for 1")
	}
}

func TestWriteGoalPositionBounds(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)
	ctx := context.Background()

	for _, angle := range []float64{-0.001, 2*math.Pi + 0.001, math.NaN(), math.Inf(1)} {
		if err := WriteGoalPosition(ctx, c, 1, angle); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("WriteGoalPosition(%g) = %v, want ErrInvalidArgument", angle, err)
		}
	}
	if len(bus.calls) != 0 {
		t.Errorf("transport saw %d calls for rejected angles", len(bus.calls))
	}

	for _, angle := range []float64{0, 2 * math.Pi} {
		if err := WriteGoalPosition(ctx, c, 1, angle); err != nil {
			t.Errorf("WriteGoalPosition(%g) = %v", angle, err)
		}
	}
	if got := bus.get(1, GoalPosition); got != Resolution {
		t.Errorf("raw goal at 2π = %d, want %d", got, Resolution)
	}
}

func TestGoalPositionRoundTrip(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)
	ctx := context.Background()
	// one quantization step, plus float slack for truncation at exact multiples
	step := 2*math.Pi/Resolution + 1e-9

	for i := 0; i < 1000; i++ {
		theta := float64(i) / 1000 * 2 * math.Pi
		if err := WriteGoalPosition(ctx, c, 1, theta); err != nil {
			t.Fatalf("WriteGoalPosition(%g): %v", theta, err)
		}
		got, err := ReadGoalPosition(ctx, c, 1)
		if err != nil {
			t.Fatalf("ReadGoalPosition: %v", err)
		}
		if math.Abs(got-theta) > step {
			t.Errorf("round trip %g -> %g, off by more than %g", theta, got, step)
		}
	}
}

func TestReadPresentPosition(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)
	bus.set(1, PresentPosition, 2048)

	got, err := ReadPresentPosition(context.Background(), c, 1)
	if err != nil {
		t.Fatalf("ReadPresentPosition: %v", err)
	}
	if math.Abs(got-math.Pi) > 1e-9 {
		t.Errorf("ReadPresentPosition = %g, want π", got)
	}
}

func TestTorqueLimitPercent(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)
	ctx := context.Background()

	if err := WriteTorqueLimitPercent(ctx, c, 1, 0.5); err != nil {
		t.Fatalf("WriteTorqueLimitPercent: %v", err)
	}
	if raw := bus.get(1, TorqueLimit); raw != 500 {
		t.Errorf("raw torque limit = %d, want 500", raw)
	}
	got, err := ReadTorqueLimitPercent(ctx, c, 1)
	if err != nil || got != 0.5 {
		t.Errorf("ReadTorqueLimitPercent = %g, %v; want 0.5", got, err)
	}

	if err := WriteTorqueLimitPercent(ctx, c, 1, -0.1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative limit = %v, want ErrInvalidArgument", err)
	}
}

func TestReadLoadPercent(t *testing.T) {
	tests := []struct {
		raw  int
		want float64
	}{
		{0, 0},
		{300, 0.3},
		{1000, 1.0},
		{1300, 0.3},
	}
	for _, tt := range tests {
		bus := newFakeBus()
		c := connected(t, bus)
		bus.set(1, CurrentLoad, tt.raw)

		got, err := ReadLoadPercent(context.Background(), c, 1)
		if err != nil {
			t.Fatalf("ReadLoadPercent: %v", err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ReadLoadPercent(raw %d) = %g, want %g", tt.raw, got, tt.want)
		}
	}
}

func TestReadTempAndVoltage(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)
	ctx := context.Background()
	bus.set(1, CurrentTemperature, 41)
	bus.set(1, CurrentVoltage, 121)

	if temp, err := ReadTemp(ctx, c, 1); err != nil || temp != 41 {
		t.Errorf("ReadTemp = %d, %v; want 41", temp, err)
	}
	if v, err := ReadVoltage(ctx, c, 1); err != nil || math.Abs(v-12.1) > 1e-9 {
		t.Errorf("ReadVoltage = %g, %v; want 12.1", v, err)
	}
	if len(writes(bus.calls)) != 0 {
		t.Error("reads issued writes")
	}
}

func TestReadMaxTorquePercent(t *testing.T) {
	bus := newFakeBus()
	c := connected(t, bus)
	bus.set(2, MaxTorque, 1000)

	got, err := ReadMaxTorquePercent(context.Background(), c, 2)
	if err != nil || got != 1.0 {
		t.Errorf("ReadMaxTorquePercent = %g, %v; want 1", got, err)
	}
	want := []call{{Op: "read2", ID: 2, Addr: MaxTorque.Address()}}
	if diff := cmp.Diff(want, bus.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}
