package circuitbreaker_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"locallibrary/pkg/circuitbreaker"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()

	ok := func() error { return nil }
	fail := func() error { return errors.New("service error") }

	t.Run("stays closed on successes", func(t *testing.T) {
		t.Parallel()
		cb := circuitbreaker.New(10, time.Second, 0.5, 2)
		for i := 0; i < 30; i++ {
			require.NoError(t, cb.Call(ok))
		}
	})

	t.Run("opens after failure percentile exceeded", func(t *testing.T) {
		t.Parallel()
		cb := circuitbreaker.New(10, time.Minute, 0.5, 2)
		for i := 0; i < 5; i++ {
			require.Error(t, cb.Call(fail))
		}
		err := cb.Call(ok)
		require.ErrorIs(t, err, circuitbreaker.ErrOpen)
	})

	t.Run("recovers through half-open", func(t *testing.T) {
		t.Parallel()
		cb := circuitbreaker.New(10, 50*time.Millisecond, 0.5, 2)
		for i := 0; i < 5; i++ {
			require.Error(t, cb.Call(fail))
		}
		require.ErrorIs(t, cb.Call(ok), circuitbreaker.ErrOpen)

		time.Sleep(100 * time.Millisecond)
		// half-open probes succeed until the breaker closes again
		for i := 0; i < 5; i++ {
			require.NoError(t, cb.Call(ok))
		}
	})

	t.Run("reset closes the breaker", func(t *testing.T) {
		t.Parallel()
		cb := circuitbreaker.New(4, time.Minute, 0.5, 1)
		for i := 0; i < 4; i++ {
			require.Error(t, cb.Call(fail))
		}
		require.ErrorIs(t, cb.Call(ok), circuitbreaker.ErrOpen)
		cb.Reset()
		require.NoError(t, cb.Call(ok))
	})
}
