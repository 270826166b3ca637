package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/retry"
)

var errRefused = errors.New("dial tcp 127.0.0.1:9200: connect: connection refused")

func fastConfig(attempts int) retry.Config {
	return retry.Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Retry(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errRefused
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("401 unauthorized")
	calls := 0
	err := retry.Retry(context.Background(), fastConfig(5), func() error {
		calls++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Retry(context.Background(), fastConfig(3), func() error {
		calls++
		return errRefused
	})

	require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	require.ErrorIs(t, err, errRefused)
	assert.Equal(t, 3, calls)
}

func TestRetry_HonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Retry(ctx, fastConfig(3), func() error { return nil })
	require.ErrorIs(t, err, retry.ErrContextCancelled)
}

func TestBackoff_IsCapped(t *testing.T) {
	t.Parallel()

	cfg := retry.Config{InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, cfg.Backoff(1))
	assert.Equal(t, 2*time.Second, cfg.Backoff(2))
	assert.Equal(t, 4*time.Second, cfg.Backoff(3))
	assert.Equal(t, 5*time.Second, cfg.Backoff(4))
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.True(t, retry.IsTransient(errRefused))
	assert.True(t, retry.IsTransient(context.DeadlineExceeded))
	assert.False(t, retry.IsTransient(errors.New("index_not_found_exception")))
	assert.False(t, retry.IsTransient(nil))
}
