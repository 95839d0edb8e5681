package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	fastOpts := RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return nil
		}, fastOpts)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: errors.New("transient"), Retryable: true}
			}
			return nil
		}, fastOpts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		permanent := &RetryableError{Err: errors.New("permanent"), Retryable: false}
		err := WithRetry(context.Background(), func() error {
			calls++
			return permanent
		}, fastOpts)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: errors.New("still broken"), Retryable: true}
		}, fastOpts)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, fastOpts.MaxAttempts, calls)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := WithRetry(ctx, func() error {
			return &RetryableError{Err: errors.New("transient"), Retryable: true}
		}, fastOpts)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", ErrRateLimit, true},
		{"wrapped rate limit", &RetryableError{Err: ErrRateLimit, Retryable: true}, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"retryable flag set", &RetryableError{Err: errors.New("x"), Retryable: true}, true},
		{"retryable flag unset", &RetryableError{Err: errors.New("x"), Retryable: false}, false},
		{"plain error", errors.New("x"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save audit", inner)

	assert.Equal(t, "could not save audit: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := &UserError{UserMessage: "nothing to audit"}
	assert.Equal(t, "nothing to audit", bare.Error())
}
