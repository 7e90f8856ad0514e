package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// advance moves the fake clock forward once per expected sleep.
func advance(t *testing.T, ctx context.Context, clk *clockwork.FakeClock, d time.Duration, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		require.NoError(t, clk.BlockUntilContext(ctx, 1))
		clk.Advance(d)
	}
}

func TestWaitSucceedsImmediately(t *testing.T) {
	calls := 0
	err := Policy{Interval: time.Second, Timeout: 10 * time.Second}.Wait(context.Background(), clockwork.NewFakeClock(), func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWaitSucceedsAfterRetries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clk := clockwork.NewFakeClock()
	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- Policy{Interval: 2 * time.Second, Timeout: 60 * time.Second}.Wait(ctx, clk, func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})
	}()

	advance(t, ctx, clk, 2*time.Second, 2)
	require.NoError(t, <-errCh)
	assert.Equal(t, 3, calls)
}

func TestWaitTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clk := clockwork.NewFakeClock()
	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- Policy{Interval: 2 * time.Second, Timeout: 6 * time.Second}.Wait(ctx, clk, func(context.Context) (bool, error) {
			calls++
			return false, nil
		})
	}()

	// Attempts at 0s, 2s and 4s; 4s+2s reaches the deadline.
	advance(t, ctx, clk, 2*time.Second, 2)
	err := <-errCh
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, Policy{Interval: 2 * time.Second, Timeout: 6 * time.Second}.MaxAttempts())
}

func TestWaitStopsOnCheckError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Policy{Interval: time.Second, Timeout: time.Minute}.Wait(context.Background(), clockwork.NewFakeClock(), func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWaitHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clk := clockwork.NewFakeClock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Policy{Interval: time.Second, Timeout: time.Hour}.Wait(ctx, clk, func(context.Context) (bool, error) {
			return false, nil
		})
	}()

	require.NoError(t, clk.BlockUntilContext(context.Background(), 1))
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestMaxAttempts(t *testing.T) {
	tests := []struct {
		policy Policy
		want   int
	}{
		{Policy{Interval: 2 * time.Second, Timeout: 60 * time.Second}, 30},
		{Policy{Interval: 2 * time.Second, Timeout: 5 * time.Second}, 3},
		{Policy{Interval: 10 * time.Second, Timeout: time.Second}, 1},
		{Policy{Interval: 0, Timeout: time.Second}, 1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.policy.MaxAttempts(), "%+v", tc.policy)
	}
}

func TestWaitChecksAtMostMaxAttempts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	policy := Policy{Interval: 2 * time.Second, Timeout: 60 * time.Second}
	clk := clockwork.NewFakeClock()
	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- policy.Wait(ctx, clk, func(context.Context) (bool, error) {
			calls++
			return false, nil
		})
	}()

	advance(t, ctx, clk, 2*time.Second, policy.MaxAttempts()-1)
	require.ErrorIs(t, <-errCh, ErrTimeout)
	assert.Equal(t, 30, calls)
}

func TestWaitZeroIntervalChecksOnce(t *testing.T) {
	calls := 0
	err := Policy{Interval: 0, Timeout: time.Minute}.Wait(context.Background(), clockwork.NewFakeClock(), func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, calls)
}
