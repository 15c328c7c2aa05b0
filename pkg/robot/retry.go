package robot

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/gwillem/feetech/pkg/servo"
)

// Retry runs op until it succeeds, returns a non-retryable error, or has
// been tried attempts times. Only communication errors are retried.
func Retry(ctx context.Context, attempts int, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     10 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         250 * time.Millisecond,
		MaxElapsedTime:      5 * time.Second,
		Clock:               backoff.SystemClock,
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !servo.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
