package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()
	ok := func() error { return nil }
	errSvc := errors.New("service error")
	fail := func() error { return errSvc }

	clock := &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	cb := newBreaker(Settings{
		Window:        10,
		OpenTimeout:   2 * time.Second,
		FailureRatio:  0.3,
		RecoveryCalls: 3,
	}, clock.now)

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())

	require.ErrorIs(t, cb.Call(fail), errSvc)
	require.ErrorIs(t, cb.Call(fail), errSvc)
	require.Equal(t, Closed, cb.State())
	require.ErrorIs(t, cb.Call(fail), errSvc)
	require.Equal(t, Open, cb.State())

	called := false
	require.ErrorIs(t, cb.Call(func() error { called = true; return nil }), ErrOpen)
	require.False(t, called)

	clock.advance(3 * time.Second)
	require.NoError(t, cb.Call(ok))
	require.Equal(t, HalfOpen, cb.State())

	require.ErrorIs(t, cb.Call(fail), errSvc)
	require.Equal(t, Open, cb.State())

	clock.advance(3 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())
}

func Test_circuitBreaker_Reset(t *testing.T) {
	t.Parallel()
	cb := New(Settings{Window: 2, OpenTimeout: time.Hour, FailureRatio: 0.5, RecoveryCalls: 1})
	_ = cb.Call(func() error { return errors.New("x") })
	require.Equal(t, Open, cb.State())
	cb.Reset()
	require.Equal(t, Closed, cb.State())
	require.NoError(t, cb.Call(func() error { return nil }))
}
