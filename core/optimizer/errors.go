package optimizer

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is wrapped by every configuration validation error.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// InvariantViolation is the panic value raised when a repair or mutation pass
// cannot restore the buy/sell count within its iteration bound. It signals a
// programming defect and is never returned as an error.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
