package runtimestate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"hiero-solo/pkg/data/schema/model"
)

func newLocalState(t *testing.T, dir string) *LocalConfigRuntimeState {
	t.Helper()
	return NewLocalConfigRuntimeState(LocalConfigOptions{
		BasePath:  dir,
		Migration: testMigrationOptions(),
		Logger:    testLogger(),
	})
}

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestLocalConfig_ReadBeforeLoad(t *testing.T) {
	state := newLocalState(t, t.TempDir())
	ctx := context.Background()

	_, err := state.Configuration()
	var readErr *ReadBeforeLoadError
	require.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, err, ErrNotLoaded)

	var writeErr *WriteBeforeLoadError
	assert.ErrorAs(t, state.Persist(ctx), &writeErr)
	assert.ErrorAs(t, state.Modify(ctx, func(*LocalConfig) error { return nil }), &writeErr)

	_, err = state.DeploymentByName("dep")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLocalConfig_CreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	state := newLocalState(t, dir)
	ctx := context.Background()

	exists, err := state.ConfigFileExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, state.Load(ctx))
	assert.True(t, state.IsLoaded())

	exists, err = state.ConfigFileExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	cfg, err := state.Configuration()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.SchemaVersion())
	assert.Equal(t, model.UserIdentity{Name: "alice", Hostname: "ws-1"}, cfg.UserIdentity())
	assert.Equal(t, "0.40.0", cfg.Versions().CLI().String())
	assert.Empty(t, cfg.Deployments())

	stored := readYAML(t, filepath.Join(dir, LocalConfigFileName))
	assert.Equal(t, 1, stored["schemaVersion"])
}

func TestLocalConfig_MigratesAndWritesBack(t *testing.T) {
	dir := t.TempDir()
	legacy := `soloVersion: 0.35.0
userEmailAddress: alice@example.com
deployments:
  dual:
    namespace: solo-ns
    clusters:
      - cluster-1
clusterRefs:
  cluster-1: kind-solo
`
	path := filepath.Join(dir, LocalConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	state := newLocalState(t, dir)
	require.NoError(t, state.Load(context.Background()))

	cfg, err := state.Configuration()
	require.NoError(t, err)
	assert.Equal(t, "0.35.0", cfg.Versions().CLI().String())

	d, err := cfg.Deployment("dual")
	require.NoError(t, err)
	assert.Equal(t, "solo-ns", d.Namespace())
	assert.Equal(t, []string{"cluster-1"}, d.Clusters())
	assert.Zero(t, d.Realm())
	assert.Zero(t, d.Shard())

	ctxName, ok := cfg.ClusterRef("cluster-1")
	assert.True(t, ok)
	assert.Equal(t, "kind-solo", ctxName)

	stored := readYAML(t, path)
	assert.Equal(t, 1, stored["schemaVersion"])
	assert.NotContains(t, stored, "soloVersion")
	assert.NotContains(t, stored, "userEmailAddress")
	deployments, ok := stored["deployments"].([]any)
	require.True(t, ok, "deployments are stored as an array")
	assert.Len(t, deployments, 1)
}

func TestLocalConfig_Modify(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	state := newLocalState(t, dir)
	require.NoError(t, state.Load(ctx))

	require.NoError(t, state.Modify(ctx, func(c *LocalConfig) error {
		c.AddDeployment("alpha", "solo-alpha", 2, 3)
		c.AddClusterRef("cluster-a", "kind-a")
		return c.AddClusterRefToDeployment("cluster-a", "alpha")
	}))

	reloaded := newLocalState(t, dir)
	require.NoError(t, reloaded.Load(ctx))

	realm, err := reloaded.RealmForDeployment("alpha")
	require.NoError(t, err)
	assert.Equal(t, 2, realm)
	shard, err := reloaded.ShardForDeployment("alpha")
	require.NoError(t, err)
	assert.Equal(t, 3, shard)

	d, err := reloaded.DeploymentByName("alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"cluster-a"}, d.Clusters())

	cfg, err := reloaded.Configuration()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"cluster-a": "kind-a"}, cfg.ClusterRefs())

	_, err = reloaded.DeploymentByName("missing")
	var notFound *DeploymentNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLocalConfig_ModifyErrorSkipsWrite(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	state := newLocalState(t, dir)
	require.NoError(t, state.Load(ctx))

	err := state.Modify(ctx, func(c *LocalConfig) error {
		c.AddDeployment("beta", "solo-beta", 0, 0)
		return c.AddClusterRefToDeployment("cluster-a", "missing")
	})
	var notFound *DeploymentNotFoundError
	require.ErrorAs(t, err, &notFound)

	reloaded := newLocalState(t, dir)
	require.NoError(t, reloaded.Load(ctx))
	_, err = reloaded.DeploymentByName("beta")
	assert.ErrorAs(t, err, &notFound)
}

func TestLocalConfig_AbortedModifyIsNotPersistedLater(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	state := newLocalState(t, dir)
	require.NoError(t, state.Load(ctx))

	aborted := errors.New("aborted")
	err := state.Modify(ctx, func(c *LocalConfig) error {
		c.AddClusterRef("leaked", "kind-leaked")
		c.AddDeployment("leaked", "solo-leaked", 0, 0)
		return aborted
	})
	require.ErrorIs(t, err, aborted)

	cfg, err := state.Configuration()
	require.NoError(t, err)
	_, ok := cfg.ClusterRef("leaked")
	assert.False(t, ok, "the loaded config is restored")
	assert.Empty(t, cfg.Deployments())

	require.NoError(t, state.Modify(ctx, func(*LocalConfig) error { return nil }))

	reloaded := newLocalState(t, dir)
	require.NoError(t, reloaded.Load(ctx))
	cfg, err = reloaded.Configuration()
	require.NoError(t, err)
	assert.NotContains(t, cfg.ClusterRefs(), "leaked")
	assert.Empty(t, cfg.Deployments())
}

func TestLocalConfig_RemoveDeploymentAndClusterRef(t *testing.T) {
	ctx := context.Background()
	state := newLocalState(t, t.TempDir())
	require.NoError(t, state.Load(ctx))

	require.NoError(t, state.Modify(ctx, func(c *LocalConfig) error {
		c.AddDeployment("gamma", "solo-gamma", 0, 0)
		c.AddClusterRef("cluster-g", "kind-g")
		return nil
	}))
	require.NoError(t, state.Modify(ctx, func(c *LocalConfig) error {
		c.RemoveClusterRef("cluster-g")
		return c.RemoveDeployment("gamma")
	}))

	cfg, err := state.Configuration()
	require.NoError(t, err)
	assert.Empty(t, cfg.Deployments())
	assert.Empty(t, cfg.ClusterRefs())

	var notFound *DeploymentNotFoundError
	assert.ErrorAs(t, cfg.RemoveDeployment("gamma"), &notFound)
}
