package components

import (
	"context"

	"github.com/looplab/fsm"

	"hiero-solo/pkg/data/schema/model"
)

const (
	eventStart  = "start"
	eventDeploy = "deploy"
)

var phaseEvents = fsm.Events{
	{Name: eventStart, Src: []string{string(model.PhaseRequested)}, Dst: string(model.PhaseStarted)},
	{Name: eventDeploy, Src: []string{string(model.PhaseStarted)}, Dst: string(model.PhaseDeployed)},
}

// PhaseMachine tracks the lifecycle of one component:
// requested -> started -> deployed.
type PhaseMachine struct {
	machine *fsm.FSM
}

// NewPhaseMachine returns a machine positioned at current. An empty phase
// starts at requested.
func NewPhaseMachine(current model.DeploymentPhase) *PhaseMachine {
	if current == "" {
		current = model.PhaseRequested
	}
	return &PhaseMachine{machine: fsm.NewFSM(string(current), phaseEvents, fsm.Callbacks{})}
}

// Current returns the current phase.
func (m *PhaseMachine) Current() model.DeploymentPhase {
	return model.DeploymentPhase(m.machine.Current())
}

// CanTransition reports whether the machine can move to phase.
func (m *PhaseMachine) CanTransition(phase model.DeploymentPhase) bool {
	if phase == m.Current() {
		return true
	}
	event, ok := eventFor(phase)
	return ok && m.machine.Can(event)
}

// Transition moves the machine to phase. Moving to the current phase is a
// no-op.
func (m *PhaseMachine) Transition(ctx context.Context, phase model.DeploymentPhase) error {
	from := m.Current()
	if phase == from {
		return nil
	}
	event, ok := eventFor(phase)
	if !ok {
		return &InvalidPhaseTransitionError{From: from, To: phase}
	}
	if err := m.machine.Event(ctx, event); err != nil {
		return &InvalidPhaseTransitionError{From: from, To: phase, Err: err}
	}
	return nil
}

func eventFor(phase model.DeploymentPhase) (string, bool) {
	switch phase {
	case model.PhaseStarted:
		return eventStart, true
	case model.PhaseDeployed:
		return eventDeploy, true
	default:
		return "", false
	}
}
