package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy describes an exponential backoff schedule
type Policy struct {
	Name            string
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
	// OnRetry is called after a failed attempt that will be retried
	OnRetry func(attempt int, err error, nextDelay time.Duration)
}

// StartupPolicy suits dependencies dialled once while the service boots
func StartupPolicy(name string) Policy {
	return Policy{
		Name:            name,
		MaxAttempts:     5,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 30 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error that must not be retried
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op until it succeeds, returns a Permanent error, exhausts the
// attempts or the context ends.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BackoffFactor < 1 {
		p.BackoffFactor = 1
	}
	if p.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.MaxTotalTimeout)
		defer cancel()
	}

	var lastErr error
	delay := p.InitialDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return p.wrap(fmt.Errorf("aborted after %d attempts: %w", attempt-1, joinLast(err, lastErr)))
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return p.wrap(perm.err)
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return p.wrap(fmt.Errorf("aborted after %d attempts: %w", attempt, joinLast(ctx.Err(), lastErr)))
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * p.BackoffFactor)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return p.wrap(fmt.Errorf("max attempts (%d) exceeded: %w", p.MaxAttempts, lastErr))
}

func (p Policy) wrap(err error) error {
	if p.Name == "" {
		return err
	}
	return fmt.Errorf("%s: %w", p.Name, err)
}

func joinLast(ctxErr, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return errors.Join(ctxErr, lastErr)
}
