package migration

import (
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/plain"
	"hiero-solo/pkg/data/schema"
	"hiero-solo/pkg/data/schema/model"
)

// helmChartV1 fills every named chart object that is absent with an empty
// chart.
func helmChartV1(charts ...string) schema.Migration {
	return schema.Step(1, "initial helm chart layout", func(doc map[string]any) (map[string]any, error) {
		clone, err := schema.Prepare(doc, 0)
		if err != nil {
			return nil, err
		}
		for _, name := range charts {
			plain.EnsureMap(clone, name)
		}
		clone[schema.VersionKey] = 1
		return clone, nil
	})
}

// NewBlockNodeConfigDefinition returns the block node product schema.
func NewBlockNodeConfigDefinition(m *mapper.ObjectMapper) *schema.Definition[model.BlockNodeConfig] {
	return schema.MustDefinition[model.BlockNodeConfig]("BlockNodeConfig", model.BlockNodeConfigDescriptor, m,
		helmChartV1("helmChart"))
}

// NewMirrorNodeConfigDefinition returns the mirror node product schema.
func NewMirrorNodeConfigDefinition(m *mapper.ObjectMapper) *schema.Definition[model.MirrorNodeConfig] {
	return schema.MustDefinition[model.MirrorNodeConfig]("MirrorNodeConfig", model.MirrorNodeConfigDescriptor, m,
		helmChartV1("helmChart"))
}

// NewExplorerConfigDefinition returns the explorer product schema.
func NewExplorerConfigDefinition(m *mapper.ObjectMapper) *schema.Definition[model.ExplorerConfig] {
	return schema.MustDefinition[model.ExplorerConfig]("ExplorerConfig", model.ExplorerConfigDescriptor, m,
		helmChartV1("helmChart"))
}

// NewJSONRPCRelayConfigDefinition returns the JSON-RPC relay product schema.
func NewJSONRPCRelayConfigDefinition(m *mapper.ObjectMapper) *schema.Definition[model.JSONRPCRelayConfig] {
	return schema.MustDefinition[model.JSONRPCRelayConfig]("JsonRpcRelayConfig", model.JSONRPCRelayConfigDescriptor, m,
		helmChartV1("helmChart"))
}

// NewSoloConfigDefinition returns the schema of the CLI's own settings.
func NewSoloConfigDefinition(m *mapper.ObjectMapper) *schema.Definition[model.SoloConfig] {
	return schema.MustDefinition[model.SoloConfig]("SoloConfig", model.SoloConfigDescriptor, m,
		helmChartV1("helmChart", "ingressControllerHelmChart", "clusterSetupHelmChart", "certManagerHelmChart"))
}
