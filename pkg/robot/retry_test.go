package robot

import (
	"context"
	"errors"
	"testing"

	"github.com/gwillem/feetech/pkg/scs"
	"github.com/gwillem/feetech/pkg/servo"
)

func TestRetryCommErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return &servo.CommError{Status: scs.CommRxTimeout}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry = %v", err)
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, func() error {
		calls++
		return &servo.CommError{Status: scs.CommRxCorrupt}
	})
	if !servo.IsRetryable(err) {
		t.Errorf("Retry = %v, want the last CommError", err)
	}
	if calls != 2 {
		t.Errorf("op called %d times, want 2", calls)
	}
}

func TestRetrySkipsDeviceErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, func() error {
		calls++
		return &servo.DeviceError{Code: servo.ErrBitOverload}
	})
	var de *servo.DeviceError
	if !errors.As(err, &de) {
		t.Errorf("Retry = %v, want DeviceError", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}
