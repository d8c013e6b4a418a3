package util

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy describes a bounded retry with a fixed delay between attempts.
type RetryPolicy struct {
	// total number of attempts, including the first one
	Attempts int
	Delay    time.Duration
}

/*
Retry calls fn until it succeeds or the policy's attempts are exhausted. The error
of the last attempt is returned as-is so callers can still inspect it with errors.Is.
Waiting between attempts is interrupted when ctx is cancelled.
*/
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context, attempt int) error) error {
	if policy.Attempts < 1 {
		return errors.New("retry policy must allow at least one attempt")
	}

	var err error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if attempt == policy.Attempts {
			break
		}

		timer := time.NewTimer(policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
