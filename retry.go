package algo

import (
	"context"
	"errors"
	"time"
)

// Retry runs an operation up to Attempts times.
//
// Between two attempts it sleeps Base*2^attempt, but only when Backoff accepts
// the error; other errors are retried immediately. Errors rejected by Retryable
// end the loop at once. Context errors are never retried.
type Retry struct {
	Attempts  int
	Base      time.Duration
	Backoff   func(error) bool // nil means never sleep
	Retryable func(error) bool // nil means everything is retryable

	sleep func(context.Context, time.Duration) error
}

// DefaultRetry makes 3 attempts and backs off 1s, 2s when rate limited.
func DefaultRetry() Retry {
	return Retry{
		Attempts: 3,
		Base:     time.Second,
		Backoff:  func(err error) bool { return errors.Is(err, ErrRateLimited) },
		Retryable: func(err error) bool {
			return !errors.Is(err, ErrNoData)
		},
	}
}

// Do calls op until it succeeds or attempts are exhausted. op receives the
// zero-based attempt number. The last error is returned.
func (r Retry) Do(ctx context.Context, op func(attempt int) error) error {
	attempts := max(r.Attempts, 1)
	var err error
	for attempt := range attempts {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = op(attempt)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if r.Retryable != nil && !r.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		if r.Backoff != nil && r.Backoff(err) {
			if serr := r.wait(ctx, r.Base<<attempt); serr != nil {
				return serr
			}
		}
	}
	return err
}

func (r Retry) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	return sleep(ctx, d)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
