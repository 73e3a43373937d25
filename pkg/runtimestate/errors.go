package runtimestate

import (
	"fmt"

	"hiero-solo/pkg/data/configuration"
)

// ErrNotLoaded matches every read or write attempted before Load.
var ErrNotLoaded = configuration.ErrNotLoaded

// DeploymentNotFoundError is returned for a deployment the local config
// does not know.
type DeploymentNotFoundError struct {
	Name string
}

func (e *DeploymentNotFoundError) Error() string {
	return fmt.Sprintf("deployment %q not found in local config", e.Name)
}

// ReadBeforeLoadError is returned when a runtime state is read before Load.
type ReadBeforeLoadError struct {
	State string
}

func (e *ReadBeforeLoadError) Error() string {
	return fmt.Sprintf("attempting to read from %s before loading it", e.State)
}

func (e *ReadBeforeLoadError) Is(target error) bool {
	return target == ErrNotLoaded
}

// WriteBeforeLoadError is returned when a runtime state is written before
// Load.
type WriteBeforeLoadError struct {
	State string
}

func (e *WriteBeforeLoadError) Error() string {
	return fmt.Sprintf("attempting to write to %s before loading it", e.State)
}

func (e *WriteBeforeLoadError) Is(target error) bool {
	return target == ErrNotLoaded
}

// RuntimeStateError wraps failures of a runtime state operation.
type RuntimeStateError struct {
	State     string
	Operation string
	Err       error
}

func (e *RuntimeStateError) Error() string {
	return fmt.Sprintf("%s: failed to %s: %v", e.State, e.Operation, e.Err)
}

func (e *RuntimeStateError) Unwrap() error {
	return e.Err
}
