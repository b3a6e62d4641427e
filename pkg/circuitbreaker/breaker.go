package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/tair/styleswipe/pkg/logger"
)

// ErrOpen is returned by Call while the circuit rejects requests
var ErrOpen = errors.New("circuit breaker is open")

// State represents the state of a circuit breaker
type State string

const (
	StateClosed   State = "closed"    // Normal operation
	StateOpen     State = "open"      // Blocking requests
	StateHalfOpen State = "half-open" // Testing if service recovered
)

// halfOpenSuccesses closes a half-open circuit
const halfOpenSuccesses = 3

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name        string
	maxFailures int           // Max consecutive failures before opening
	openFor     time.Duration // Time to wait before attempting recovery

	mu              sync.Mutex
	state           State
	failures        int
	successCount    int // Success count in half-open state
	lastStateChange time.Time
	now             func() time.Time
}

// New creates a new circuit breaker. A non-positive maxFailures disables it.
func New(name string, maxFailures int, openFor time.Duration) *Breaker {
	return &Breaker{
		name:            name,
		maxFailures:     maxFailures,
		openFor:         openFor,
		state:           StateClosed,
		lastStateChange: time.Now(),
		now:             time.Now,
	}
}

// Call executes fn with circuit breaker protection. Errors for which
// countable returns false pass through without affecting the circuit.
func (b *Breaker) Call(fn func() error, countable func(error) bool) error {
	if b == nil || b.maxFailures <= 0 {
		return fn()
	}
	if !b.allow() {
		return ErrOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && (countable == nil || countable(err)) {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.lastStateChange) > b.openFor {
		b.setState(StateHalfOpen)
		b.successCount = 0
		logger.Logger.Info().
			Str("circuit", b.name).
			Msg("Circuit breaker transitioning to half-open")
	}
	return b.state != StateOpen
}

func (b *Breaker) onFailure() {
	b.failures++

	switch {
	case b.state == StateHalfOpen:
		b.setState(StateOpen)
		logger.Logger.Warn().
			Str("circuit", b.name).
			Msg("Circuit breaker reopened after half-open failure")
	case b.failures >= b.maxFailures && b.state == StateClosed:
		b.setState(StateOpen)
		logger.Logger.Error().
			Str("circuit", b.name).
			Int("failures", b.failures).
			Int("threshold", b.maxFailures).
			Msg("Circuit breaker opened")
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= halfOpenSuccesses {
			b.setState(StateClosed)
			b.failures = 0
			b.successCount = 0
			logger.Logger.Info().
				Str("circuit", b.name).
				Msg("Circuit breaker closed after successful recovery")
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *Breaker) setState(s State) {
	b.state = s
	b.lastStateChange = b.now()
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
