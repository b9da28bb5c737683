package particle

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates tick parameters rejected before dispatch.
	ErrInvalidParameter = errors.New("particle: invalid tick parameter")

	// ErrCorruptedState indicates a dispatch did not complete and the store
	// holds a partially written buffer.
	ErrCorruptedState = errors.New("particle: store corrupted by interrupted tick")

	// ErrInvalidConstants indicates a policy constant outside its valid range.
	ErrInvalidConstants = errors.New("particle: constants out of valid bounds")

	// ErrSizeMismatch indicates source and destination buffers differ in length.
	ErrSizeMismatch = errors.New("particle: buffer size mismatch")
)

// TickError wraps an error with the tick it occurred on.
type TickError struct {
	Tick    uint64
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
