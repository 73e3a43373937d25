package components

import (
	"hiero-solo/pkg/data/schema/model"
)

// ComponentFactory builds new component entries with ids drawn from a
// wrapper's counters. It never mutates the wrapped state; callers add the
// returned entries with AddNewComponent.
type ComponentFactory struct {
	wrapper *ComponentsDataWrapper
}

// NewComponentFactory returns a factory reading counters from wrapper.
func NewComponentFactory(wrapper *ComponentsDataWrapper) *ComponentFactory {
	return &ComponentFactory{wrapper: wrapper}
}

func (f *ComponentFactory) metadata(t ComponentType, clusterRef, namespace string) model.ComponentStateMetadata {
	return newMetadata(f.wrapper.GetNewComponentID(t), clusterRef, namespace, model.PhaseRequested)
}

// CreateNewBlockNodeComponent returns a requested block node entry.
func (f *ComponentFactory) CreateNewBlockNodeComponent(clusterRef, namespace string) *model.ComponentState {
	return &model.ComponentState{Metadata: f.metadata(BlockNode, clusterRef, namespace)}
}

// CreateNewMirrorNodeComponent returns a requested mirror node entry.
func (f *ComponentFactory) CreateNewMirrorNodeComponent(clusterRef, namespace string) *model.ComponentState {
	return &model.ComponentState{Metadata: f.metadata(MirrorNode, clusterRef, namespace)}
}

// CreateNewExplorerComponent returns a requested explorer entry.
func (f *ComponentFactory) CreateNewExplorerComponent(clusterRef, namespace string) *model.ComponentState {
	return &model.ComponentState{Metadata: f.metadata(Explorer, clusterRef, namespace)}
}

// CreateNewHAProxyComponent returns a requested HAProxy entry.
func (f *ComponentFactory) CreateNewHAProxyComponent(clusterRef, namespace string) *model.ComponentState {
	return &model.ComponentState{Metadata: f.metadata(HAProxy, clusterRef, namespace)}
}

// CreateNewEnvoyProxyComponent returns a requested Envoy proxy entry.
func (f *ComponentFactory) CreateNewEnvoyProxyComponent(clusterRef, namespace string) *model.ComponentState {
	return &model.ComponentState{Metadata: f.metadata(EnvoyProxy, clusterRef, namespace)}
}

// CreateNewRelayComponent returns a requested relay entry serving the given
// consensus nodes.
func (f *ComponentFactory) CreateNewRelayComponent(clusterRef, namespace string, consensusNodeIDs []int) *model.RelayNodeState {
	return &model.RelayNodeState{
		Metadata:         f.metadata(RelayNode, clusterRef, namespace),
		ConsensusNodeIDs: append([]int{}, consensusNodeIDs...),
	}
}

// CreateNewConsensusNodeComponent returns a consensus node entry. Consensus
// node ids are chosen by the caller.
func (f *ComponentFactory) CreateNewConsensusNodeComponent(id int, clusterRef, namespace string, phase model.DeploymentPhase, blockNodeIDs []int) *model.ConsensusNodeState {
	return &model.ConsensusNodeState{
		Metadata:     newMetadata(id, clusterRef, namespace, phase),
		BlockNodeIDs: append([]int{}, blockNodeIDs...),
	}
}

// CreateConsensusNodeComponentsFromNodeIDs returns one requested consensus
// node entry per id.
func (f *ComponentFactory) CreateConsensusNodeComponentsFromNodeIDs(nodeIDs []int, clusterRef, namespace string) []*model.ConsensusNodeState {
	nodes := make([]*model.ConsensusNodeState, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		nodes = append(nodes, f.CreateNewConsensusNodeComponent(id, clusterRef, namespace, model.PhaseRequested, nil))
	}
	return nodes
}

func newMetadata(id int, clusterRef, namespace string, phase model.DeploymentPhase) model.ComponentStateMetadata {
	return model.ComponentStateMetadata{
		ID:                 id,
		Namespace:          namespace,
		Cluster:            clusterRef,
		Phase:              phase,
		PortForwardConfigs: []model.PortForwardConfig{},
	}
}
