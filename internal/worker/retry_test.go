package worker

import (
	"context"
	"errors"
	"testing"

	"pricecast/internal/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(attempt int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RecoversAfterFailure(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(attempt int) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ReturnsLastErrorAfterAllAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := withRetry(context.Background(), 3, func(attempt int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_InsufficientHistoryIsTerminal(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(attempt int) error {
		calls++
		return &forecast.InsufficientHistoryError{SKU: "SKU-1", Observed: 3, Required: 30}
	})

	var ih *forecast.InsufficientHistoryError
	require.ErrorAs(t, err, &ih)
	// No backoff retries for an error more attempts cannot fix.
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, 3, func(attempt int) error {
		calls++
		return errors.New("transient")
	})
	// The first attempt runs immediately; the backoff wait then observes
	// the cancelled context instead of sleeping.
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}