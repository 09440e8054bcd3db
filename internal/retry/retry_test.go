package retry_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rental-inspection-backend/internal/retry"
)

// recordingSleep collects the requested delays without waiting.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testPolicy(sleep *recordingSleep) retry.Policy {
	return retry.Policy{
		MaxAttempts:    3,
		AttemptTimeout: time.Second,
		BackoffUnit:    time.Second,
		Sleep:          sleep.Sleep,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	sleep := &recordingSleep{}
	calls := 0

	got, err := retry.Do(context.Background(), testPolicy(sleep), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("transient failure %d", calls)
		}
		return "stored", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "stored", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleep.delays)
}

func TestDo_Exhaustion(t *testing.T) {
	sleep := &recordingSleep{}
	calls := 0
	var lastErr error

	_, err := retry.Do(context.Background(), testPolicy(sleep), func(ctx context.Context) (int, error) {
		calls++
		lastErr = fmt.Errorf("failure %d", calls)
		return 0, lastErr
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Same(t, lastErr, err)
	assert.Len(t, sleep.delays, 2)
}

func TestDo_FirstAttemptSuccessDoesNotSleep(t *testing.T) {
	sleep := &recordingSleep{}

	got, err := retry.Do(context.Background(), testPolicy(sleep), func(ctx context.Context) (int, error) {
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Empty(t, sleep.delays)
}

func TestDo_AttemptTimeout(t *testing.T) {
	sleep := &recordingSleep{}
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	var calls atomic.Int32
	p := testPolicy(sleep)
	p.AttemptTimeout = 20 * time.Millisecond

	_, err := retry.Do(context.Background(), p, func(ctx context.Context) (int, error) {
		calls.Add(1)
		// Ignores ctx on purpose: the retrier must abandon the call.
		<-release
		return 1, nil
	})

	assert.ErrorIs(t, err, retry.ErrUploadTimeout)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_TimeoutThenSuccess(t *testing.T) {
	sleep := &recordingSleep{}
	p := testPolicy(sleep)
	p.AttemptTimeout = 20 * time.Millisecond

	var calls atomic.Int32
	got, err := retry.Do(context.Background(), p, func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleep.delays)
}

func TestDo_ParentCancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	p := retry.Policy{
		MaxAttempts:    5,
		AttemptTimeout: time.Second,
		BackoffUnit:    time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	_, err := retry.Do(ctx, p, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetry(t *testing.T) {
	sleep := &recordingSleep{}
	p := testPolicy(sleep)

	var attempts []int
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
		assert.Equal(t, retry.Backoff(attempt, time.Second), delay)
	}

	_, _ = retry.Do(context.Background(), p, func(ctx context.Context) (int, error) {
		return 0, errors.New("always")
	})

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, retry.Backoff(1, time.Second))
	assert.Equal(t, 4*time.Second, retry.Backoff(2, time.Second))
	assert.Equal(t, 8*time.Millisecond, retry.Backoff(3, time.Millisecond))
}
