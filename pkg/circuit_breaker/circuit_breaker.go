package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed   State = 1
	Open     State = 2
	HalfOpen State = 3
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

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type circuitBreaker struct {
	mu    sync.Mutex
	state State
	now   func() time.Time

	// failure ratio over the last window calls that opens the breaker
	threshold float64
	window    []bool
	pos       int

	// how long the breaker stays open before a trial call
	cooldown time.Duration
	openedAt time.Time

	// consecutive successes needed in half-open to close again
	recovery  int
	successes int
}

// New creates a breaker tracking the last window calls.
func New(window int, cooldown time.Duration, threshold float64, recovery int) CircuitBreaker {
	return newCircuitBreaker(window, cooldown, threshold, recovery, time.Now)
}

func newCircuitBreaker(window int, cooldown time.Duration, threshold float64, recovery int, now func() time.Time) *circuitBreaker {
	if window < 1 {
		window = 1
	}
	return &circuitBreaker{
		state:     Closed,
		now:       now,
		threshold: threshold,
		window:    make([]bool, window),
		cooldown:  cooldown,
		recovery:  recovery,
	}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if cb.now().Sub(cb.openedAt) <= cb.cooldown {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = HalfOpen
		cb.successes = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.window[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % len(cb.window)

	if cb.state == HalfOpen {
		if err != nil {
			cb.trip()
			return err
		}
		cb.successes++
		if cb.successes >= cb.recovery {
			cb.reset()
		}
		return nil
	}

	fails := 0
	for _, failed := range cb.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(cb.window)) >= cb.threshold {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.successes = 0
	cb.openedAt = cb.now()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.window {
		cb.window[i] = false
	}
	cb.successes = 0
	cb.pos = 0
	cb.state = Closed
}
