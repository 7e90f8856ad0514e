// Package poll waits for asynchronous remote jobs using a fixed-interval
// policy bounded by a deadline.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
)

// ErrTimeout is returned when the policy's window elapses without success.
var ErrTimeout = errors.New("polling timed out")

// Check reports whether the job is done. A non-nil error stops polling and
// is returned unchanged.
type Check func(ctx context.Context) (done bool, err error)

// Policy polls every Interval until Timeout has elapsed.
type Policy struct {
	Interval time.Duration
	Timeout  time.Duration
}

// MaxAttempts returns how many times Wait calls its check before giving up.
func (p Policy) MaxAttempts() int {
	if p.Interval <= 0 {
		return 1
	}
	n := int(p.Timeout / p.Interval)
	if p.Timeout%p.Interval != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Wait calls check immediately and then once per Interval, at most
// MaxAttempts times, so a 2s/60s policy checks at most 30 times and never
// sleeps past the deadline.
func (p Policy) Wait(ctx context.Context, clock clockwork.Clock, check Check) error {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	retries := uint64(p.MaxAttempts() - 1)
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), retries), ctx)
	b.Reset()

	for attempt := 1; ; attempt++ {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("%w after %d attempts (%s)", ErrTimeout, attempt, p.Timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(wait):
		}
	}
}
