package model

import (
	"hiero-solo/pkg/data/mapper"
)

// DeploymentPhase is the lifecycle phase of one component instance.
type DeploymentPhase string

const (
	PhaseRequested DeploymentPhase = "requested"
	PhaseStarted   DeploymentPhase = "started"
	PhaseDeployed  DeploymentPhase = "deployed"
)

// LedgerPhase is the lifecycle phase of the network ledger.
type LedgerPhase string

const (
	LedgerPhaseUninitialized LedgerPhase = "uninitialized"
	LedgerPhaseInitialized   LedgerPhase = "initialized"
)

// PortForwardConfig records a port forward opened for a component.
type PortForwardConfig struct {
	LocalPort int `yaml:"localPort"`
	PodPort   int `yaml:"podPort"`
}

// PortForwardConfigDescriptor is the property table of PortForwardConfig.
var PortForwardConfigDescriptor = mapper.NewDescriptor("PortForwardConfig",
	mapper.Int("localPort"),
	mapper.Int("podPort"),
)

// ComponentStateMetadata is shared by every component entry.
type ComponentStateMetadata struct {
	ID                 int                 `yaml:"id"`
	Namespace          string              `yaml:"namespace"`
	Cluster            string              `yaml:"cluster"`
	Phase              DeploymentPhase     `yaml:"phase"`
	PortForwardConfigs []PortForwardConfig `yaml:"portForwardConfigs"`
}

// ComponentStateMetadataDescriptor is the property table of
// ComponentStateMetadata.
var ComponentStateMetadataDescriptor = mapper.NewDescriptor("ComponentStateMetadata",
	mapper.Int("id"),
	mapper.String("namespace"),
	mapper.String("cluster"),
	mapper.String("phase"),
	mapper.ObjectArray("portForwardConfigs", PortForwardConfigDescriptor),
)

// StateEntry is implemented by every component entry.
type StateEntry interface {
	StateMetadata() *ComponentStateMetadata
}

// ComponentState is the entry of components with no type-specific data.
type ComponentState struct {
	Metadata ComponentStateMetadata `yaml:"metadata"`
}

// StateMetadata implements StateEntry.
func (s *ComponentState) StateMetadata() *ComponentStateMetadata {
	return &s.Metadata
}

// ConsensusNodeState is a consensus node entry.
type ConsensusNodeState struct {
	Metadata     ComponentStateMetadata `yaml:"metadata"`
	BlockNodeIDs []int                  `yaml:"blockNodeIds"`
}

// StateMetadata implements StateEntry.
func (s *ConsensusNodeState) StateMetadata() *ComponentStateMetadata {
	return &s.Metadata
}

// RelayNodeState is a JSON-RPC relay entry.
type RelayNodeState struct {
	Metadata         ComponentStateMetadata `yaml:"metadata"`
	ConsensusNodeIDs []int                  `yaml:"consensusNodeIds"`
}

// StateMetadata implements StateEntry.
func (s *RelayNodeState) StateMetadata() *ComponentStateMetadata {
	return &s.Metadata
}

// ExternalBlockNodeState is a block node running outside the deployment.
type ExternalBlockNodeState struct {
	ID      int    `yaml:"id"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// ComponentIDs holds the next identifier to hand out per component type.
// Counters only ever increase.
type ComponentIDs struct {
	ConsensusNodes int `yaml:"consensusNodes"`
	BlockNodes     int `yaml:"blockNodes"`
	MirrorNodes    int `yaml:"mirrorNodes"`
	RelayNodes     int `yaml:"relayNodes"`
	HAProxies      int `yaml:"haProxies"`
	EnvoyProxies   int `yaml:"envoyProxies"`
	Explorers      int `yaml:"explorers"`
}

// DeploymentState is the live topology of one deployment.
type DeploymentState struct {
	LedgerPhase        LedgerPhase              `yaml:"ledgerPhase"`
	ComponentIDs       ComponentIDs             `yaml:"componentIds"`
	ConsensusNodes     []ConsensusNodeState     `yaml:"consensusNodes"`
	BlockNodes         []ComponentState         `yaml:"blockNodes"`
	MirrorNodes        []ComponentState         `yaml:"mirrorNodes"`
	RelayNodes         []RelayNodeState         `yaml:"relayNodes"`
	HAProxies          []ComponentState         `yaml:"haProxies"`
	EnvoyProxies       []ComponentState         `yaml:"envoyProxies"`
	Explorers          []ComponentState         `yaml:"explorers"`
	ExternalBlockNodes []ExternalBlockNodeState `yaml:"externalBlockNodes"`
}

var (
	componentStateDescriptor = mapper.NewDescriptor("ComponentState",
		mapper.Object("metadata", ComponentStateMetadataDescriptor),
	)

	consensusNodeStateDescriptor = mapper.NewDescriptor("ConsensusNodeState",
		mapper.Object("metadata", ComponentStateMetadataDescriptor),
		mapper.ScalarArray("blockNodeIds", mapper.TypeInt),
	)

	relayNodeStateDescriptor = mapper.NewDescriptor("RelayNodeState",
		mapper.Object("metadata", ComponentStateMetadataDescriptor),
		mapper.ScalarArray("consensusNodeIds", mapper.TypeInt),
	)

	externalBlockNodeStateDescriptor = mapper.NewDescriptor("ExternalBlockNodeState",
		mapper.Int("id"),
		mapper.String("address"),
		mapper.Int("port"),
	)

	componentIDsDescriptor = mapper.NewDescriptor("ComponentIds",
		mapper.Int("consensusNodes"),
		mapper.Int("blockNodes"),
		mapper.Int("mirrorNodes"),
		mapper.Int("relayNodes"),
		mapper.Int("haProxies"),
		mapper.Int("envoyProxies"),
		mapper.Int("explorers"),
	)
)

// DeploymentStateDescriptor is the property table of DeploymentState.
var DeploymentStateDescriptor = mapper.NewDescriptor("DeploymentState",
	mapper.String("ledgerPhase"),
	mapper.Object("componentIds", componentIDsDescriptor),
	mapper.ObjectArray("consensusNodes", consensusNodeStateDescriptor),
	mapper.ObjectArray("blockNodes", componentStateDescriptor),
	mapper.ObjectArray("mirrorNodes", componentStateDescriptor),
	mapper.ObjectArray("relayNodes", relayNodeStateDescriptor),
	mapper.ObjectArray("haProxies", componentStateDescriptor),
	mapper.ObjectArray("envoyProxies", componentStateDescriptor),
	mapper.ObjectArray("explorers", componentStateDescriptor),
	mapper.ObjectArray("externalBlockNodes", externalBlockNodeStateDescriptor),
)

// StateArrayNames lists the component arrays of a deployment state, in the
// order they are persisted.
var StateArrayNames = []string{
	"consensusNodes",
	"blockNodes",
	"mirrorNodes",
	"relayNodes",
	"haProxies",
	"envoyProxies",
	"explorers",
}
