package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSidecarDown = errors.New("sidecar down")

func failingFetch() error { return errSidecarDown }
func okFetch() error      { return nil }

func testBreaker(coolDown time.Duration) *ScraperBreaker {
	return NewScraperBreaker(BreakerSettings{
		TripAfter:    3,
		RecoverAfter: 2,
		CoolDown:     coolDown,
	})
}

func TestScraperBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := testBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, BreakerClosed, b.State())
		err := b.Call(failingFetch)
		assert.ErrorIs(t, err, errSidecarDown)
	}
	assert.Equal(t, BreakerOpen, b.State())

	// Open state fast-fails without contacting the sidecar.
	called := false
	err := b.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrScraperUnavailable)
	assert.False(t, called)
}

func TestScraperBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := testBreaker(time.Minute)

	require.Error(t, b.Call(failingFetch))
	require.Error(t, b.Call(failingFetch))
	require.NoError(t, b.Call(okFetch))
	require.Error(t, b.Call(failingFetch))
	require.Error(t, b.Call(failingFetch))

	// Four failures total, but never three in a row.
	assert.Equal(t, BreakerClosed, b.State())
}

func TestScraperBreaker_ProbeAndRecovery(t *testing.T) {
	b := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.Error(t, b.Call(failingFetch))
	}
	require.Equal(t, BreakerOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, BreakerProbing, b.State())

	// Two clean probes close the breaker again.
	require.NoError(t, b.Call(okFetch))
	assert.Equal(t, BreakerProbing, b.State())
	require.NoError(t, b.Call(okFetch))
	assert.Equal(t, BreakerClosed, b.State())
}

func TestScraperBreaker_FailedProbeReopens(t *testing.T) {
	b := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.Error(t, b.Call(failingFetch))
	}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, BreakerProbing, b.State())

	require.ErrorIs(t, b.Call(failingFetch), errSidecarDown)
	assert.Equal(t, BreakerOpen, b.State())
	assert.ErrorIs(t, b.Call(okFetch), ErrScraperUnavailable)
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", BreakerClosed.String())
	assert.Equal(t, "open", BreakerOpen.String())
	assert.Equal(t, "probing", BreakerProbing.String())
	assert.Equal(t, "unknown", BreakerState(99).String())
}

func TestNewScraperBreaker_ZeroSettingsUseDefaults(t *testing.T) {
	b := NewScraperBreaker(BreakerSettings{})
	for i := 0; i < 4; i++ {
		require.Error(t, b.Call(failingFetch))
	}
	// Default trip threshold is 5 failures.
	assert.Equal(t, BreakerClosed, b.State())
	require.Error(t, b.Call(failingFetch))
	assert.Equal(t, BreakerOpen, b.State())
}
