package remote

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestWithRetry_RetriesConnectivityFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetryConfig(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return NewRemoteError("Ping", "", ErrUnavailable, true)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("WithRetry() failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Operation ran %d times, want 3", attempts)
	}
}

func TestWithRetry_DoesNotRetrySemanticFailures(t *testing.T) {
	attempts := 0
	semantic := NewRemoteError("CreateOrder", CollectionOrders, ErrInvalidPayload, false)

	err := WithRetry(context.Background(), fastRetryConfig(5), func(ctx context.Context) error {
		attempts++
		return semantic
	})

	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("WithRetry() = %v, want the semantic error back", err)
	}
	if attempts != 1 {
		t.Errorf("Semantic failure ran %d times, want 1 (no retry)", attempts)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetryConfig(3), func(ctx context.Context) error {
		attempts++
		return NewRemoteError("Ping", "", ErrUnavailable, true)
	})

	if !IsConnectivity(err) {
		t.Fatalf("WithRetry() = %v, want the last connectivity error", err)
	}
	if attempts != 3 {
		t.Errorf("Operation ran %d times, want 3", attempts)
	}
}

func TestWithRetry_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, fastRetryConfig(3), func(ctx context.Context) error {
		t.Error("Operation should not run after the context is cancelled")
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithRetry() = %v, want context.Canceled", err)
	}
}
