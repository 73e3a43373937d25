package runtimestate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiero-solo/pkg/data/configuration"
	"hiero-solo/pkg/data/schema/migration"
	"hiero-solo/pkg/data/schema/model"
	resconfig "hiero-solo/resources/config"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMigrationOptions() migration.Options {
	return migration.Options{
		CLIVersion: "0.40.0",
		Identity:   func() model.UserIdentity { return model.UserIdentity{Name: "alice", Hostname: "ws-1"} },
		Now:        func() time.Time { return fixedNow },
	}
}

func productOptions(vars ...string) ProductOptions {
	return ProductOptions{
		Provider: configuration.NewProvider(testLogger(), configuration.WithEnviron(func() []string { return vars })),
		Logger:   testLogger(),
	}
}

func TestProductState_ReadBeforeLoad(t *testing.T) {
	state := NewBlockNodeConfigRuntimeState(productOptions())

	_, err := state.BlockNodeConfig()
	require.Error(t, err)
	assert.Equal(t, "BlockNodeConfig is not loaded yet.", err.Error())
	assert.True(t, errors.Is(err, ErrNotLoaded))

	var unloaded *configuration.UnloadedConfigError
	assert.ErrorAs(t, err, &unloaded)
	assert.False(t, state.IsLoaded())

	_, err = state.Config()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestProductState_UnloadedMessages(t *testing.T) {
	opts := productOptions()
	_, err := NewMirrorNodeConfigRuntimeState(opts).MirrorNodeConfig()
	assert.EqualError(t, err, "MirrorNodeConfig is not loaded yet.")
	_, err = NewExplorerConfigRuntimeState(opts).ExplorerConfig()
	assert.EqualError(t, err, "ExplorerConfig is not loaded yet.")
	_, err = NewJSONRPCRelayConfigRuntimeState(opts).JSONRPCRelayConfig()
	assert.EqualError(t, err, "JsonRpcRelayConfig is not loaded yet.")
	_, err = NewSoloConfigRuntimeState(opts).SoloConfig()
	assert.EqualError(t, err, "SoloConfig is not loaded yet.")
}

func TestMirrorNodeConfig_BundledDefaults(t *testing.T) {
	state := NewMirrorNodeConfigRuntimeState(productOptions())
	require.NoError(t, state.Load(context.Background()))

	cfg, err := state.MirrorNodeConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.SchemaVersion())

	chart := cfg.HelmChart()
	assert.Equal(t, "hedera-mirror", chart.Name())
	assert.Equal(t, "mirror", chart.Release())
	assert.Equal(t, "https://hashgraph.github.io/hedera-mirror-node/charts", chart.Repository())
	assert.Equal(t, []string{
		"app.kubernetes.io/component=importer",
		"app.kubernetes.io/instance=mirror",
	}, chart.Labels())
}

func TestMirrorNodeConfig_EnvironmentOverride(t *testing.T) {
	state := NewMirrorNodeConfigRuntimeState(productOptions(
		"SOLO_MIRROR_NODE_HELM-CHART_DIRECTORY=/work/charts/mirror",
		"SOLO_MIRROR_NODE_HELM-CHART_VERSION=v0.140.0",
		"SOLO_EXPLORER_HELM-CHART_VERSION=v9.9.9",
	))
	require.NoError(t, state.Load(context.Background()))

	cfg, err := state.MirrorNodeConfig()
	require.NoError(t, err)
	chart := cfg.HelmChart()
	assert.Equal(t, "v0.140.0", chart.Version())
	assert.Equal(t, "/work/charts/mirror", chart.Directory())
	assert.Equal(t, "/work/charts/mirror", chart.Repository(), "a chart directory wins over the repository")
	assert.Equal(t, "hedera-mirror", chart.Name(), "merged with the bundled defaults")

	layered, err := state.Config()
	require.NoError(t, err)
	require.Len(t, layered.Sources(), 2)
	assert.Equal(t, resconfig.MirrorNodeFile, layered.Sources()[0].Name())
}

func TestSoloConfig_AllCharts(t *testing.T) {
	state := NewSoloConfigRuntimeState(productOptions())
	require.NoError(t, state.Load(context.Background()))

	cfg, err := state.SoloConfig()
	require.NoError(t, err)
	assert.Equal(t, "solo-deployment", cfg.HelmChart().Name())
	assert.Equal(t, "haproxy-ingress.github.io/controller/", cfg.IngressControllerHelmChart().IngressControllerPrefix())
	assert.Equal(t, "solo-setup", cfg.ClusterSetupHelmChart().Namespace())
	assert.Equal(t, "cert-manager", cfg.CertManagerHelmChart().Namespace())
}

func TestProductState_OverrideSource(t *testing.T) {
	opts := productOptions("SOLO_BLOCK_NODE_HELM-CHART_VERSION=v1.0.0")
	opts.Sources = []configuration.ConfigSource{
		configuration.NewMapConfigSource("flags", configuration.OverrideOrdinal, map[string]any{
			"helmChart": map[string]any{"version": "v2.0.0"},
		}),
	}
	state := NewBlockNodeConfigRuntimeState(opts)
	require.NoError(t, state.Load(context.Background()))

	cfg, err := state.BlockNodeConfig()
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", cfg.HelmChart().Version())
}

func TestProductState_CustomDefaults(t *testing.T) {
	opts := productOptions()
	opts.FS = fstest.MapFS{
		"defaults/" + resconfig.ExplorerFile: {Data: []byte("helmChart:\n  name: custom-explorer\n")},
	}
	opts.Dir = "defaults"

	state := NewExplorerConfigRuntimeState(opts)
	require.NoError(t, state.Load(context.Background()))

	cfg, err := state.ExplorerConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.SchemaVersion(), "unversioned defaults are migrated")
	assert.Equal(t, "custom-explorer", cfg.HelmChart().Name())
}

func TestHelmChart_Labels(t *testing.T) {
	assert.Nil(t, NewHelmChart(model.HelmChart{}).Labels())
	assert.Equal(t, []string{"a=b", "c=d"}, NewHelmChart(model.HelmChart{LabelSelector: "a=b, ,c=d"}).Labels())
	assert.Equal(t, "oci://x", NewHelmChart(model.HelmChart{Repository: "oci://x"}).Repository())
}

func TestApplicationVersions(t *testing.T) {
	versions := &model.ApplicationVersions{CLI: "0.40.0", Chart: "not-a-version"}
	v := NewApplicationVersions(versions)

	assert.Equal(t, "0.40.0", v.CLI().String())
	assert.Equal(t, "0.0.0", v.Chart().String())
	assert.Equal(t, "0.0.0", v.MirrorNode().String())

	assert.False(t, v.Set("unknown", v.CLI()))
	assert.True(t, v.Set(VersionMirrorNode, v.CLI()))
	assert.Equal(t, "0.40.0", versions.MirrorNodeChart)
}

func TestProductConfigState_Object(t *testing.T) {
	var state ProductConfigState = NewJSONRPCRelayConfigRuntimeState(productOptions())
	assert.Equal(t, "JsonRpcRelayConfig", state.Name())
	assert.Equal(t, JSONRPCRelayEnvPrefix, state.EnvPrefix())

	_, err := state.Object()
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, state.Load(context.Background()))
	obj, err := state.Object()
	require.NoError(t, err)
	assert.Equal(t, 1, obj["schemaVersion"])

	chart, ok := obj["helmChart"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "relay", chart["release"])
	assert.Same(t, model.JSONRPCRelayConfigDescriptor, state.Descriptor())
}
