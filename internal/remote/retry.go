package remote

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for remote store operations
type RetryConfig struct {
	MaxAttempts   int           `json:"max_attempts" yaml:"max_attempts"`
	InitialDelay  time.Duration `json:"initial_delay" yaml:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay" yaml:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"`
	JitterEnabled bool          `json:"jitter_enabled" yaml:"jitter_enabled"`
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func(ctx context.Context) error

// WithRetry executes an operation with retry logic. Only connectivity
// failures are retried; semantic rejections return immediately since the
// store has already made up its mind.
func WithRetry(ctx context.Context, config *RetryConfig, op RetryableOperation) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt >= config.MaxAttempts || !IsConnectivity(err) {
			break
		}

		delay := config.calculateDelay(attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// calculateDelay calculates the delay before the next retry attempt
func (c *RetryConfig) calculateDelay(attempt int) time.Duration {
	// Exponential backoff: delay = initial_delay * (backoff_factor ^ (attempt - 1))
	delay := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))

	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	// Jitter to prevent thundering herd
	if c.JitterEnabled {
		delay += rand.Float64() * 0.1 * delay
	}

	return time.Duration(delay)
}
