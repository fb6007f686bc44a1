/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package retry runs a fallible operation repeatedly with exponential
// backoff. Attempts are sequential and the backoff wait blocks the caller.
//
// Operations must tolerate being invoked again after a failed or partial
// attempt: delivery is at-least-once.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Publish defaults for pushing manifest lists.
const (
	DefaultMaxAttempts  = 6
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 30 * time.Second
)

// Config controls a retry loop.
type Config struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int
	// InitialDelay is the wait after the first failure. It doubles after
	// every further failure, capped at MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// OnRetry, if set, is called before each retry with the 1-based number
	// of the attempt that failed, its error and the wait that follows.
	OnRetry func(attempt int, err error, next time.Duration)
	// Timer overrides the timer used to wait between attempts.
	Timer backoff.Timer
}

// DefaultPublishConfig returns 6 attempts backing off from 1s to 30s.
func DefaultPublishConfig() Config {
	return Config{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
	}
}

// Validate checks the attempt count and delay bounds.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.InitialDelay <= 0 || c.MaxDelay <= 0 {
		return fmt.Errorf("delays must be positive, got initial %s and max %s", c.InitialDelay, c.MaxDelay)
	}
	if c.InitialDelay > c.MaxDelay {
		return fmt.Errorf("initial delay %s exceeds max delay %s", c.InitialDelay, c.MaxDelay)
	}
	return nil
}

// Permanent marks err as not worth retrying. Do returns it unwrapped
// without further attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do invokes op until it succeeds, returns a Permanent error, the attempts
// are exhausted or ctx is done. On exhaustion the last error is returned
// unchanged.
func Do[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	var zero T
	if err := cfg.Validate(); err != nil {
		return zero, err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialDelay
	exp.MaxInterval = cfg.MaxDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	// WithMaxRetries counts retries, not attempts.
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(cfg.MaxAttempts-1)), ctx)

	attempt := 0
	operation := func() (T, error) {
		attempt++
		return op()
	}

	var notify backoff.Notify
	if cfg.OnRetry != nil {
		notify = func(err error, next time.Duration) {
			cfg.OnRetry(attempt, err, next)
		}
	}

	return backoff.RetryNotifyWithTimerAndData(operation, policy, notify, cfg.Timer)
}
