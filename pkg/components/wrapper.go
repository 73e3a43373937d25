package components

import (
	"context"
	"slices"

	"hiero-solo/pkg/data/schema/model"
)

// ComponentsDataWrapper edits the component arrays and id counters of a
// deployment state in place. It is not safe for concurrent use; callers
// serialize access through the remote config runtime state.
type ComponentsDataWrapper struct {
	state *model.DeploymentState
}

// NewComponentsDataWrapper wraps state.
func NewComponentsDataWrapper(state *model.DeploymentState) *ComponentsDataWrapper {
	return &ComponentsDataWrapper{state: state}
}

// State returns the wrapped deployment state.
func (w *ComponentsDataWrapper) State() *model.DeploymentState {
	return w.state
}

// Components returns pointers to every entry of type t. Edits through the
// returned entries are applied to the state.
func (w *ComponentsDataWrapper) Components(t ComponentType) []model.StateEntry {
	s := w.state
	switch t {
	case ConsensusNode:
		return entries(s.ConsensusNodes)
	case RelayNode:
		return entries(s.RelayNodes)
	case BlockNode:
		return entries(s.BlockNodes)
	case MirrorNode:
		return entries(s.MirrorNodes)
	case HAProxy:
		return entries(s.HAProxies)
	case EnvoyProxy:
		return entries(s.EnvoyProxies)
	case Explorer:
		return entries(s.Explorers)
	}
	return nil
}

// ComponentCount returns the number of entries of type t.
func (w *ComponentsDataWrapper) ComponentCount(t ComponentType) int {
	return len(w.Components(t))
}

// GetComponent returns the entry of type t with the given id.
func (w *ComponentsDataWrapper) GetComponent(t ComponentType, id int) (model.StateEntry, error) {
	for _, entry := range w.Components(t) {
		if entry.StateMetadata().ID == id {
			return entry, nil
		}
	}
	return nil, &ComponentNotFoundError{Type: t, ID: id}
}

// GetComponentsByClusterReference returns the entries of type t placed on
// clusterRef.
func (w *ComponentsDataWrapper) GetComponentsByClusterReference(t ComponentType, clusterRef string) []model.StateEntry {
	var out []model.StateEntry
	for _, entry := range w.Components(t) {
		if entry.StateMetadata().Cluster == clusterRef {
			out = append(out, entry)
		}
	}
	return out
}

// GetNewComponentID returns the next id for type t without reserving it.
func (w *ComponentsDataWrapper) GetNewComponentID(t ComponentType) int {
	if counter := w.counter(t); counter != nil {
		return *counter
	}
	return 0
}

// AddNewComponent appends entry to the array of type t and advances the
// type's counter past the entry's id.
func (w *ComponentsDataWrapper) AddNewComponent(entry model.StateEntry, t ComponentType) error {
	id := entry.StateMetadata().ID
	if _, err := w.GetComponent(t, id); err == nil {
		return &ComponentExistsError{Type: t, ID: id}
	}

	s := w.state
	mismatch := &ComponentTypeMismatchError{Type: t, Entry: entry}
	switch t {
	case ConsensusNode:
		node, ok := entry.(*model.ConsensusNodeState)
		if !ok {
			return mismatch
		}
		s.ConsensusNodes = append(s.ConsensusNodes, *node)
	case RelayNode:
		relay, ok := entry.(*model.RelayNodeState)
		if !ok {
			return mismatch
		}
		s.RelayNodes = append(s.RelayNodes, *relay)
	default:
		component, ok := entry.(*model.ComponentState)
		target := w.plainArray(t)
		if !ok || target == nil {
			return mismatch
		}
		*target = append(*target, *component)
	}

	if counter := w.counter(t); counter != nil && *counter <= id {
		*counter = id + 1
	}
	return nil
}

// RemoveComponent deletes the entry of type t with the given id. The type's
// counter is left untouched so the id is never handed out again.
func (w *ComponentsDataWrapper) RemoveComponent(id int, t ComponentType) error {
	matches := func(entry model.StateEntry) bool { return entry.StateMetadata().ID == id }

	s := w.state
	before := w.ComponentCount(t)
	switch t {
	case ConsensusNode:
		s.ConsensusNodes = slices.DeleteFunc(s.ConsensusNodes, func(n model.ConsensusNodeState) bool { return matches(&n) })
	case RelayNode:
		s.RelayNodes = slices.DeleteFunc(s.RelayNodes, func(n model.RelayNodeState) bool { return matches(&n) })
	default:
		if target := w.plainArray(t); target != nil {
			*target = slices.DeleteFunc(*target, func(n model.ComponentState) bool { return matches(&n) })
		}
	}
	if w.ComponentCount(t) == before {
		return &ComponentNotFoundError{Type: t, ID: id}
	}
	return nil
}

// ChangeComponentPhase moves the entry of type t with the given id to
// phase, following the component lifecycle.
func (w *ComponentsDataWrapper) ChangeComponentPhase(ctx context.Context, id int, t ComponentType, phase model.DeploymentPhase) error {
	entry, err := w.GetComponent(t, id)
	if err != nil {
		return err
	}
	metadata := entry.StateMetadata()
	machine := NewPhaseMachine(metadata.Phase)
	if err := machine.Transition(ctx, phase); err != nil {
		return err
	}
	metadata.Phase = machine.Current()
	return nil
}

// AddExternalBlockNode records a block node running outside the deployment
// and returns it with its assigned id.
func (w *ComponentsDataWrapper) AddExternalBlockNode(address string, port int) model.ExternalBlockNodeState {
	id := 1
	for _, node := range w.state.ExternalBlockNodes {
		if node.ID >= id {
			id = node.ID + 1
		}
	}
	node := model.ExternalBlockNodeState{ID: id, Address: address, Port: port}
	w.state.ExternalBlockNodes = append(w.state.ExternalBlockNodes, node)
	return node
}

// RemoveExternalBlockNode deletes the external block node with the given id.
func (w *ComponentsDataWrapper) RemoveExternalBlockNode(id int) error {
	before := len(w.state.ExternalBlockNodes)
	w.state.ExternalBlockNodes = slices.DeleteFunc(w.state.ExternalBlockNodes, func(n model.ExternalBlockNodeState) bool {
		return n.ID == id
	})
	if len(w.state.ExternalBlockNodes) == before {
		return &ComponentNotFoundError{Type: "externalBlockNodes", ID: id}
	}
	return nil
}

func (w *ComponentsDataWrapper) plainArray(t ComponentType) *[]model.ComponentState {
	s := w.state
	switch t {
	case BlockNode:
		return &s.BlockNodes
	case MirrorNode:
		return &s.MirrorNodes
	case HAProxy:
		return &s.HAProxies
	case EnvoyProxy:
		return &s.EnvoyProxies
	case Explorer:
		return &s.Explorers
	}
	return nil
}

func (w *ComponentsDataWrapper) counter(t ComponentType) *int {
	ids := &w.state.ComponentIDs
	switch t {
	case ConsensusNode:
		return &ids.ConsensusNodes
	case BlockNode:
		return &ids.BlockNodes
	case MirrorNode:
		return &ids.MirrorNodes
	case RelayNode:
		return &ids.RelayNodes
	case HAProxy:
		return &ids.HAProxies
	case EnvoyProxy:
		return &ids.EnvoyProxies
	case Explorer:
		return &ids.Explorers
	}
	return nil
}

func entries[E any, P interface {
	*E
	model.StateEntry
}](items []E) []model.StateEntry {
	out := make([]model.StateEntry, 0, len(items))
	for i := range items {
		out = append(out, P(&items[i]))
	}
	return out
}
