package lease

import (
	"errors"
	"fmt"
)

// ErrLeaseHeld matches LeaseHeldError through errors.Is.
var ErrLeaseHeld = errors.New("lease held by another holder")

// LeaseHeldError is returned when another holder owns an unexpired Lease.
type LeaseHeldError struct {
	Holder string
}

func (e *LeaseHeldError) Error() string {
	return fmt.Sprintf("lease held by %s", e.Holder)
}

func (e *LeaseHeldError) Is(target error) bool {
	return target == ErrLeaseHeld
}

// AcquireError is returned when the Lease could not be acquired.
type AcquireError struct {
	Name      string
	Namespace string
	Attempts  int
	Err       error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("failed to acquire lease %s/%s after %d attempts: %v", e.Namespace, e.Name, e.Attempts, e.Err)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}
