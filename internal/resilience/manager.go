package resilience

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Manager owns one circuit breaker per service name.
type Manager struct {
	logger        *logrus.Entry
	defaultConfig Config

	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
}

// NewManager creates a manager with the given default breaker config.
func NewManager(logger *logrus.Entry, defaultConfig Config) *Manager {
	return &Manager{
		logger:        logger.WithField("component", "resilience"),
		defaultConfig: defaultConfig,
		breakers:      make(map[string]*CircuitBreaker),
	}
}

// Breaker returns the breaker for name, creating it with the default
// config on first use.
func (m *Manager) Breaker(name string) *CircuitBreaker {
	m.mu.RLock()
	cb, ok := m.breakers[name]
	m.mu.RUnlock()
	if ok {
		return cb
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok := m.breakers[name]; ok {
		return cb
	}
	cb = NewCircuitBreaker(name, m.defaultConfig, m.logger)
	m.breakers[name] = cb
	m.logger.WithField("circuit_name", name).Info("created circuit breaker")
	return cb
}

// Execute runs fn under the named breaker.
func (m *Manager) Execute(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return m.Breaker(name).Execute(ctx, fn)
}

// States returns the current state of every known breaker.
func (m *Manager) States() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.breakers))
	for name, cb := range m.breakers {
		out[name] = cb.GetState().String()
	}
	return out
}
