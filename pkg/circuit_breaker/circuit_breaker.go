package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrOpen = errors.New("circuit breaker is open")

type Settings struct {
	// Window is the number of most recent calls the failure ratio is computed over.
	Window int
	// OpenTimeout is how long the breaker rejects calls before probing again.
	OpenTimeout time.Duration
	// FailureRatio opens the breaker once failures/Window reaches it.
	FailureRatio float64
	// RecoveryCalls is the number of consecutive successes in half-open needed to close.
	RecoveryCalls int
}

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type circuitBreaker struct {
	mu       sync.Mutex
	settings Settings
	state    State
	openedAt time.Time
	results  []bool // true marks a failure
	pos      int
	trials   int
	now      func() time.Time
}

func New(s Settings) CircuitBreaker {
	return newBreaker(s, time.Now)
}

func newBreaker(s Settings, now func() time.Time) *circuitBreaker {
	if s.Window <= 0 {
		s.Window = 10
	}
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.5
	}
	return &circuitBreaker{
		settings: s,
		state:    Closed,
		results:  make([]bool, s.Window),
		now:      now,
	}
}

func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if cb.now().Sub(cb.openedAt) < cb.settings.OpenTimeout {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = HalfOpen
		cb.trials = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.results[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % len(cb.results)

	if cb.state == HalfOpen {
		if err != nil {
			cb.trip()
			return err
		}
		cb.trials++
		if cb.trials >= cb.settings.RecoveryCalls {
			cb.reset()
		}
		return err
	}

	fails := 0
	for _, failed := range cb.results {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(cb.results)) >= cb.settings.FailureRatio {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.trials = 0
	cb.openedAt = cb.now()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.results {
		cb.results[i] = false
	}
	cb.trials = 0
	cb.pos = 0
	cb.state = Closed
}
