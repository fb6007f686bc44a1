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

package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTimer fires immediately and remembers every requested wait.
type recordingTimer struct {
	delays []time.Duration
	c      chan time.Time
}

func (t *recordingTimer) Start(d time.Duration) {
	t.delays = append(t.delays, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Time{}
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

func (t *recordingTimer) total() time.Duration {
	var sum time.Duration
	for _, d := range t.delays {
		sum += d
	}
	return sum
}

func publishConfig(timer *recordingTimer) Config {
	cfg := DefaultPublishConfig()
	cfg.Timer = timer
	return cfg
}

func TestDoSucceedsOnSixthAttempt(t *testing.T) {
	t.Parallel()

	timer := &recordingTimer{}
	cfg := publishConfig(timer)

	var observed []int
	cfg.OnRetry = func(attempt int, err error, _ time.Duration) {
		observed = append(observed, attempt)
		assert.EqualError(t, err, fmt.Sprintf("attempt %d failed", attempt))
	}

	calls := 0
	got, err := Do(context.Background(), cfg, func() (string, error) {
		calls++
		if calls < 6 {
			return "", fmt.Errorf("attempt %d failed", calls)
		}
		return "Digest: sha256:ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "Digest: sha256:ok", got)
	assert.Equal(t, 6, calls)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, observed)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	timer := &recordingTimer{}
	cfg := publishConfig(timer)

	retries := 0
	cfg.OnRetry = func(int, error, time.Duration) { retries++ }

	var lastErr error
	calls := 0
	_, err := Do(context.Background(), cfg, func() (int, error) {
		calls++
		lastErr = fmt.Errorf("failure %d", calls)
		return 0, lastErr
	})

	require.Error(t, err)
	assert.Equal(t, 6, calls)
	assert.Equal(t, 5, retries)
	assert.Same(t, lastErr, err, "the last error must be surfaced unchanged")
	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}, timer.delays)
	assert.Equal(t, 31*time.Second, timer.total())
}

func TestDoCapsDelay(t *testing.T) {
	t.Parallel()

	timer := &recordingTimer{}
	cfg := publishConfig(timer)
	cfg.MaxAttempts = 8

	_, err := Do(context.Background(), cfg, func() (struct{}, error) {
		return struct{}{}, errors.New("registry unavailable")
	})

	require.Error(t, err)
	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}, timer.delays)
}

func TestDoSingleAttempt(t *testing.T) {
	t.Parallel()

	timer := &recordingTimer{}
	cfg := publishConfig(timer)
	cfg.MaxAttempts = 1

	calls := 0
	_, err := Do(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.delays)
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	t.Parallel()

	timer := &recordingTimer{}
	cause := errors.New("unexpected output")

	calls := 0
	_, err := Do(context.Background(), publishConfig(timer), func() (int, error) {
		calls++
		return 0, Permanent(cause)
	})

	assert.Same(t, cause, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.delays)
}

func TestDoCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, publishConfig(&recordingTimer{}), func() (int, error) {
		calls++
		return 0, errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: DefaultPublishConfig()},
		{
			name:    "zero attempts",
			cfg:     Config{MaxAttempts: 0, InitialDelay: time.Second, MaxDelay: time.Second},
			wantErr: "max attempts must be at least 1",
		},
		{
			name:    "non-positive delay",
			cfg:     Config{MaxAttempts: 1, InitialDelay: 0, MaxDelay: time.Second},
			wantErr: "delays must be positive",
		},
		{
			name:    "initial above max",
			cfg:     Config{MaxAttempts: 3, InitialDelay: time.Minute, MaxDelay: time.Second},
			wantErr: "exceeds max delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDoRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Do(context.Background(), Config{}, func() (int, error) {
		calls++
		return 1, nil
	})

	assert.Error(t, err)
	assert.Zero(t, calls)
}
