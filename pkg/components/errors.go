package components

import (
	"fmt"

	"hiero-solo/pkg/data/schema/model"
)

// ComponentNotFoundError is returned when no component of the given type
// carries the requested id.
type ComponentNotFoundError struct {
	Type ComponentType
	ID   int
}

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component %d of type %s not found", e.ID, e.Type)
}

// ComponentExistsError is returned when adding a component whose id is
// already taken within its type.
type ComponentExistsError struct {
	Type ComponentType
	ID   int
}

func (e *ComponentExistsError) Error() string {
	return fmt.Sprintf("component %d of type %s already exists", e.ID, e.Type)
}

// ComponentTypeMismatchError is returned when an entry does not match the
// array it is added to.
type ComponentTypeMismatchError struct {
	Type  ComponentType
	Entry model.StateEntry
}

func (e *ComponentTypeMismatchError) Error() string {
	return fmt.Sprintf("entry of type %T cannot be stored as %s", e.Entry, e.Type)
}

// InvalidPhaseTransitionError is returned for phase changes the lifecycle
// does not allow.
type InvalidPhaseTransitionError struct {
	From model.DeploymentPhase
	To   model.DeploymentPhase
	Err  error
}

func (e *InvalidPhaseTransitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid phase transition %s -> %s: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("invalid phase transition %s -> %s", e.From, e.To)
}

func (e *InvalidPhaseTransitionError) Unwrap() error {
	return e.Err
}
