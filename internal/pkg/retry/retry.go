package retry

import (
	"context"
	"time"
)

// Policy is a bounded fixed-backoff retry policy: up to MaxAttempts tries
// with Delay between them. There is no exponential growth; every attempt
// waits the same fixed delay.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewPolicy(maxAttempts int, delay time.Duration, opts ...func(*Policy)) Policy {
	p := Policy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		sleep:       sleepCtx,
	}
	for _, o := range opts {
		o(&p)
	}
	return p
}

// WithSleep replaces the blocking sleep, used by tests to avoid real delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) func(*Policy) {
	return func(p *Policy) {
		p.sleep = sleep
	}
}

// Do runs fn up to MaxAttempts times, sleeping Delay between failures.
// onFailure is invoked with each attempt number and error before the next
// try, so callers can classify and log at point of occurrence. Returns nil
// on the first success, or the last error once the budget is exhausted.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error, onFailure func(attempt int, err error)) error {
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if onFailure != nil {
			onFailure(attempt, err)
		}
		if attempt == p.MaxAttempts {
			break
		}
		if serr := p.sleep(ctx, p.Delay); serr != nil {
			return serr
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
