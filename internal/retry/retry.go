package retry

import (
	"context"
	"fmt"
	"time"
)

// DefaultMaxDelay caps backoff when RetryConfig.MaxDelay is unset.
const DefaultMaxDelay = 5 * time.Minute

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool          // Exponential backoff: Delay, 2*Delay, 4*Delay...
	MaxDelay    time.Duration // upper bound for backed-off pauses
}

// delayAfter returns the pause after the given failed attempt (1-based).
func (c RetryConfig) delayAfter(attempt int) time.Duration {
	if !c.Backoff || attempt <= 1 || c.Delay <= 0 {
		return c.Delay
	}

	limit := c.MaxDelay
	if limit <= 0 {
		limit = DefaultMaxDelay
	}
	if c.Delay >= limit {
		return c.Delay
	}

	shift := uint(attempt - 1)
	d := c.Delay << shift
	if shift >= 63 || d>>shift != c.Delay || d > limit {
		return limit
	}
	return d
}

// WithRetry calls fn until it succeeds, MaxAttempts is reached or ctx is done.
// The final error wraps the last failure.
func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == config.MaxAttempts {
			break
		}

		timer := time.NewTimer(config.delayAfter(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, lastErr)
}
