package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Millisecond}, func(ctx context.Context, attempt int) error {
		calls++
		require.Equal(t, calls, attempt)
		if attempt < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	errLast := errors.New("third failure")
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Millisecond}, func(ctx context.Context, attempt int) error {
		calls++
		if attempt == 3 {
			return errLast
		}
		return errors.New("earlier failure")
	})
	require.ErrorIs(t, err, errLast)
	// not wrapped
	require.Same(t, errLast, err)
	require.Equal(t, 3, calls)
}

func TestRetry_WaitsBetweenAttempts(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, Delay: 700 * time.Millisecond}
	start := time.Now()
	err := Retry(context.Background(), policy, func(ctx context.Context, attempt int) error {
		return errors.New("always failing")
	})
	require.EqualError(t, err, "always failing")
	// two waits between three attempts, no wait after the last one
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 2*policy.Delay)
	require.Less(t, elapsed, 3*policy.Delay)
}

func TestRetry_NoWaitAfterSuccess(t *testing.T) {
	start := time.Now()
	err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Hour}, func(ctx context.Context, attempt int) error {
		return nil
	})
	require.NoError(t, err)
	require.Less(t, time.Since(start), time.Second)
}

func TestRetry_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errAttempt := errors.New("attempt failed")
	calls := 0
	err := Retry(ctx, RetryPolicy{Attempts: 3, Delay: time.Hour}, func(ctx context.Context, attempt int) error {
		calls++
		cancel()
		return errAttempt
	})
	require.ErrorIs(t, err, errAttempt)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestRetry_InvalidPolicy(t *testing.T) {
	err := Retry(context.Background(), RetryPolicy{}, func(ctx context.Context, attempt int) error {
		t.Fatal("fn must not be called")
		return nil
	})
	require.EqualError(t, err, "retry policy must allow at least one attempt")
}
