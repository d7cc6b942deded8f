package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAllocation is returned when a store cannot be allocated, either because
// the requested capacity exceeds the registry limit or overflows int.
var ErrAllocation = errors.New("store allocation failed")

// ContractViolation is the panic value raised when a caller breaks an
// invariant of the storage contract: out-of-range copies, copies into a
// store that cannot hold the source kind, or a missing generalization.
// It is never returned as an error; it indicates a bug in the caller.
type ContractViolation struct {
	Op      string
	Message string
}

// Error implements the error interface.
func (e *ContractViolation) Error() string {
	return fmt.Sprintf("[CONTRACT_VIOLATION] %s: %s", e.Op, e.Message)
}

// Violate panics with a *ContractViolation.
func Violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Message: fmt.Sprintf(format, args...)})
}

func allocationError(kind Kind, capacity, limit int) error {
	return errors.Wrapf(ErrAllocation, "%s store of capacity %d exceeds limit %d", kind, capacity, limit)
}

// Overflow reports that growing a store of the given size by extra slots
// does not fit in an int.
func Overflow(kind Kind, size, extra int) error {
	return errors.Wrapf(ErrAllocation, "%s store of size %d cannot grow by %d", kind, size, extra)
}
