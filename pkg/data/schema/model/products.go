package model

import (
	"hiero-solo/pkg/data/mapper"
)

// BlockNodeConfig is the bundled configuration of the block node product.
type BlockNodeConfig struct {
	SchemaVersion int       `yaml:"schemaVersion"`
	HelmChart     HelmChart `yaml:"helmChart"`
}

// MirrorNodeConfig is the bundled configuration of the mirror node product.
type MirrorNodeConfig struct {
	SchemaVersion int       `yaml:"schemaVersion"`
	HelmChart     HelmChart `yaml:"helmChart"`
}

// ExplorerConfig is the bundled configuration of the explorer product.
type ExplorerConfig struct {
	SchemaVersion int       `yaml:"schemaVersion"`
	HelmChart     HelmChart `yaml:"helmChart"`
}

// JSONRPCRelayConfig is the bundled configuration of the JSON-RPC relay.
type JSONRPCRelayConfig struct {
	SchemaVersion int       `yaml:"schemaVersion"`
	HelmChart     HelmChart `yaml:"helmChart"`
}

// SoloConfig is the bundled configuration of the CLI itself.
type SoloConfig struct {
	SchemaVersion              int       `yaml:"schemaVersion"`
	HelmChart                  HelmChart `yaml:"helmChart"`
	IngressControllerHelmChart HelmChart `yaml:"ingressControllerHelmChart"`
	ClusterSetupHelmChart      HelmChart `yaml:"clusterSetupHelmChart"`
	CertManagerHelmChart       HelmChart `yaml:"certManagerHelmChart"`
}

// ProductConfigDescriptor returns the table shared by the single-chart
// product configurations.
func ProductConfigDescriptor(name string) *mapper.Descriptor {
	return mapper.NewDescriptor(name,
		mapper.Int("schemaVersion"),
		mapper.Object("helmChart", HelmChartDescriptor),
	)
}

var (
	BlockNodeConfigDescriptor    = ProductConfigDescriptor("BlockNodeConfig")
	MirrorNodeConfigDescriptor   = ProductConfigDescriptor("MirrorNodeConfig")
	ExplorerConfigDescriptor     = ProductConfigDescriptor("ExplorerConfig")
	JSONRPCRelayConfigDescriptor = ProductConfigDescriptor("JsonRpcRelayConfig")
)

// SoloConfigDescriptor is the property table of SoloConfig.
var SoloConfigDescriptor = mapper.NewDescriptor("SoloConfig",
	mapper.Int("schemaVersion"),
	mapper.Object("helmChart", HelmChartDescriptor),
	mapper.Object("ingressControllerHelmChart", HelmChartDescriptor),
	mapper.Object("clusterSetupHelmChart", HelmChartDescriptor),
	mapper.Object("certManagerHelmChart", HelmChartDescriptor),
)
