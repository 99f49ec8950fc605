package resilience

import (
	"errors"
	"fmt"
	"time"
)

// CircuitOpenError is returned when a call is rejected because the circuit
// is open. The wrapped function was never invoked.
type CircuitOpenError struct {
	Name              string
	RemainingCooldown time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is open, retry in %s",
		e.Name, e.RemainingCooldown.Round(time.Millisecond))
}

// IsCircuitOpen reports whether err is a circuit-open rejection.
func IsCircuitOpen(err error) bool {
	var coe *CircuitOpenError
	return errors.As(err, &coe)
}
