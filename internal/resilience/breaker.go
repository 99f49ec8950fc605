// Package resilience provides a circuit breaker for calls to fragile
// external dependencies, plus a Manager that owns one breaker per service
// name. The Manager is an explicit object constructed once and passed to
// callers; there is no process-global registry, so tests get isolated
// instances.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config holds the breaker tuning knobs.
type Config struct {
	// Consecutive failures before the circuit opens.
	FailureThreshold int
	// Cooldown after opening before probe calls are allowed.
	ResetTimeout time.Duration
	// Probe budget while half-open; exceeding it without a success reopens.
	HalfOpenMaxCalls int
}

// DefaultConfig returns the default breaker configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 2,
	}
}

// CircuitBreaker guards one named dependency.
type CircuitBreaker struct {
	name   string
	config Config
	logger *logrus.Entry

	mu            sync.Mutex
	state         State
	failures      int
	openedAt      time.Time
	halfOpenCalls int

	// now is swappable for tests.
	now func() time.Time
}

// NewCircuitBreaker creates a breaker in the closed state.
func NewCircuitBreaker(name string, config Config, logger *logrus.Entry) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultConfig().FailureThreshold
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = DefaultConfig().ResetTimeout
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = DefaultConfig().HalfOpenMaxCalls
	}
	return &CircuitBreaker{
		name:   name,
		config: config,
		logger: logger.WithField("circuit_breaker", name),
		state:  StateClosed,
		now:    time.Now,
	}
}

// Execute runs fn under breaker protection. When the circuit is open and
// the cooldown has not elapsed, fn is never invoked and a *CircuitOpenError
// carrying the remaining cooldown is returned.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		remaining := cb.config.ResetTimeout - cb.now().Sub(cb.openedAt)
		if remaining > 0 {
			return &CircuitOpenError{Name: cb.name, RemainingCooldown: remaining}
		}
		cb.setState(StateHalfOpen)
		cb.halfOpenCalls = 1
		return nil

	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.config.HalfOpenMaxCalls {
			// Probe budget exhausted without a decisive success.
			cb.setState(StateOpen)
			cb.openedAt = cb.now()
			return &CircuitOpenError{Name: cb.name, RemainingCooldown: cb.config.ResetTimeout}
		}
		cb.halfOpenCalls++
		return nil
	}
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.setState(StateClosed)
		}
		return
	}

	switch cb.state {
	case StateHalfOpen:
		// A single half-open failure reopens immediately.
		cb.setState(StateOpen)
		cb.openedAt = cb.now()
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
			cb.openedAt = cb.now()
		}
	}
}

func (cb *CircuitBreaker) setState(next State) {
	if cb.state == next {
		return
	}
	prev := cb.state
	cb.state = next
	if next == StateClosed {
		cb.failures = 0
		cb.halfOpenCalls = 0
	}
	cb.logger.WithFields(logrus.Fields{
		"from_state": prev.String(),
		"to_state":   next.String(),
		"failures":   cb.failures,
	}).Info("circuit breaker state changed")
}

// GetState returns the current state.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker back to closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
}
