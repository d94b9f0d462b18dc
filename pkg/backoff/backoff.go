// Package backoff provides bounded retry with exponential delay for
// transient failures on outbound calls.
package backoff

import (
	"context"
	"time"
)

// Policy controls retry behavior. Delay doubles after each attempt up to MaxWait.
type Policy struct {
	Attempts int
	Wait     time.Duration
	MaxWait  time.Duration
}

// Default matches the service-wide policy for provider calls:
// three attempts with exponential wait between 1s and 10s.
var Default = Policy{
	Attempts: 3,
	Wait:     time.Second,
	MaxWait:  10 * time.Second,
}

// Retry invokes fn until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned when all attempts fail.
func (p Policy) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	wait := p.Wait
	var err error

	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		wait *= 2
		if p.MaxWait > 0 && wait > p.MaxWait {
			wait = p.MaxWait
		}
	}

	return err
}
