// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runtimestate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"hiero-solo/pkg/components"
	"hiero-solo/pkg/data/backend"
	"hiero-solo/pkg/data/schema/model"
	"hiero-solo/pkg/k8s/client"
)

const testNamespace = "solo"

type remoteFixture struct {
	state      *RemoteConfigRuntimeState
	local      *LocalConfigRuntimeState
	clientsets map[string]kubernetes.Interface
}

// newRemoteFixture wires two clusters: cluster-a behind kind-a and
// cluster-b behind kind-b.
func newRemoteFixture(t *testing.T, objects ...*corev1.ConfigMap) *remoteFixture {
	t.Helper()
	ctx := context.Background()

	local := newLocalState(t, t.TempDir())
	require.NoError(t, local.Load(ctx))
	require.NoError(t, local.Modify(ctx, func(c *LocalConfig) error {
		c.AddClusterRef("cluster-a", "kind-a")
		c.AddClusterRef("cluster-b", "kind-b")
		return nil
	}))

	seeded := k8sfake.NewSimpleClientset()
	for _, cm := range objects {
		_, err := seeded.CoreV1().ConfigMaps(cm.Namespace).Create(ctx, cm, metav1.CreateOptions{})
		require.NoError(t, err)
	}
	clientsets := map[string]kubernetes.Interface{
		"kind-a": seeded,
		"kind-b": k8sfake.NewSimpleClientset(),
	}
	clients := client.StaticProvider{}
	for name, cs := range clientsets {
		clients[name] = client.NewFromClientset(cs, name, testNamespace)
	}

	return &remoteFixture{
		state: NewRemoteConfigRuntimeState(RemoteConfigOptions{
			Clients:   clients,
			Local:     local,
			Migration: testMigrationOptions(),
			Logger:    testLogger(),
		}),
		local:      local,
		clientsets: clientsets,
	}
}

func (f *remoteFixture) stored(t *testing.T, contextName string) map[string]any {
	t.Helper()
	cm, err := f.clientsets[contextName].CoreV1().ConfigMaps(testNamespace).
		Get(context.Background(), RemoteConfigMapName, metav1.GetOptions{})
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(cm.Data[RemoteConfigDataKey]), &out))
	return out
}

func (f *remoteFixture) exists(contextName string) bool {
	_, err := f.clientsets[contextName].CoreV1().ConfigMaps(testNamespace).
		Get(context.Background(), RemoteConfigMapName, metav1.GetOptions{})
	return err == nil
}

func createOptions() CreateOptions {
	return CreateOptions{
		Namespace:   testNamespace,
		ContextName: "kind-a",
		Deployment:  "dep",
		ClusterRef:  "cluster-a",
		NodeIDs:     []int{1, 2, 3},
		Versions:    model.ApplicationVersions{Chart: "0.54.5"},
		Command:     "deployment create",
	}
}

func TestRemoteConfig_ReadBeforeLoad(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()

	assert.False(t, f.state.IsLoaded())
	_, err := f.state.Configuration()
	var readErr *ReadBeforeLoadError
	require.ErrorAs(t, err, &readErr)
	_, err = f.state.Components()
	assert.ErrorIs(t, err, ErrNotLoaded)

	var writeErr *WriteBeforeLoadError
	assert.ErrorAs(t, f.state.Persist(ctx), &writeErr)
	assert.ErrorAs(t, f.state.AddCommandToHistory(ctx, "x"), &writeErr)
	assert.ErrorAs(t, f.state.Delete(ctx), &writeErr)
}

func TestRemoteConfig_LoadMissing(t *testing.T) {
	f := newRemoteFixture(t)
	err := f.state.Load(context.Background(), testNamespace, "kind-a")
	require.Error(t, err)
	assert.True(t, backend.IsNotFound(err))
	assert.False(t, f.state.IsLoaded())
}

func TestRemoteConfig_LoadUnknownContext(t *testing.T) {
	f := newRemoteFixture(t)
	err := f.state.Load(context.Background(), testNamespace, "kind-z")
	var stateErr *RuntimeStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestRemoteConfig_Create(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()
	require.NoError(t, f.state.Create(ctx, createOptions()))
	assert.True(t, f.state.IsLoaded())
	assert.Equal(t, testNamespace, f.state.Namespace())

	stored := f.stored(t, "kind-a")
	assert.Equal(t, 4, stored["schemaVersion"])

	reader := NewRemoteConfigRuntimeState(RemoteConfigOptions{Clients: f.state.clients, Logger: testLogger()})
	require.NoError(t, reader.Load(ctx, testNamespace, "kind-a"))

	cfg, err := reader.Configuration()
	require.NoError(t, err)
	assert.Equal(t, model.UserIdentity{Name: "alice", Hostname: "ws-1"}, cfg.Metadata().LastUpdatedBy)
	assert.Equal(t, "2025-06-01T12:00:00Z", cfg.Metadata().LastUpdatedAt)
	assert.Equal(t, "0.40.0", cfg.Versions().CLI().String())
	assert.Equal(t, "0.54.5", cfg.Versions().Chart().String())
	assert.Equal(t, []string{"deployment create"}, cfg.Commands())
	assert.Equal(t, model.LedgerPhaseUninitialized, cfg.LedgerPhase())

	cluster, ok := cfg.Cluster("cluster-a")
	require.True(t, ok)
	assert.Equal(t, "dep", cluster.Deployment)

	wrapper := cfg.Components()
	require.Equal(t, 3, wrapper.ComponentCount(components.ConsensusNode))
	assert.Equal(t, 4, wrapper.GetNewComponentID(components.ConsensusNode))
	for _, node := range wrapper.Components(components.ConsensusNode) {
		assert.Equal(t, model.PhaseRequested, node.StateMetadata().Phase)
		assert.Equal(t, "cluster-a", node.StateMetadata().Cluster)
	}
	assert.Equal(t, 1, wrapper.GetNewComponentID(components.MirrorNode))
}

func TestRemoteConfig_PersistFansOutToEveryCluster(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()
	require.NoError(t, f.state.Create(ctx, createOptions()))
	assert.False(t, f.exists("kind-b"))

	require.NoError(t, f.state.Modify(ctx, func(c *RemoteConfig) error {
		c.AddCluster(model.Cluster{Name: "cluster-b", Namespace: testNamespace, Deployment: "dep"})
		return nil
	}))

	require.True(t, f.exists("kind-b"))
	assert.Equal(t, f.stored(t, "kind-a"), f.stored(t, "kind-b"))
}

func TestRemoteConfig_ComponentChangesPersist(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()
	require.NoError(t, f.state.Create(ctx, createOptions()))

	wrapper, err := f.state.Components()
	require.NoError(t, err)
	factory := components.NewComponentFactory(wrapper)
	mirror := factory.CreateNewMirrorNodeComponent("cluster-a", testNamespace)
	require.NoError(t, wrapper.AddNewComponent(mirror, components.MirrorNode))
	require.NoError(t, wrapper.ChangeComponentPhase(ctx, 1, components.ConsensusNode, model.PhaseStarted))
	require.NoError(t, f.state.Persist(ctx))

	require.NoError(t, f.state.Load(ctx, testNamespace, "kind-a"))
	wrapper, err = f.state.Components()
	require.NoError(t, err)
	assert.Equal(t, 1, wrapper.ComponentCount(components.MirrorNode))
	assert.Equal(t, 2, wrapper.GetNewComponentID(components.MirrorNode))

	node, err := wrapper.GetComponent(components.ConsensusNode, 1)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseStarted, node.StateMetadata().Phase)
}

func TestRemoteConfig_HistoryAndVersions(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()
	require.NoError(t, f.state.Create(ctx, createOptions()))

	require.NoError(t, f.state.AddCommandToHistory(ctx, "node start"))
	require.NoError(t, f.state.UpdateComponentVersion(ctx, VersionMirrorNode, semver.MustParse("0.140.0")))
	assert.Error(t, f.state.UpdateComponentVersion(ctx, "unknown", semver.MustParse("1.0.0")))

	stored := f.stored(t, "kind-a")
	history, ok := stored["history"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"deployment create", "node start"}, history["commands"])
	assert.Equal(t, "node start", history["lastExecutedCommand"])

	versions, ok := stored["versions"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0.140.0", versions["mirrorNodeChart"])
}

func TestRemoteConfig_LoadMigratesLegacyDocument(t *testing.T) {
	legacy := `metadata:
  namespace: solo
  deploymentName: dep
  soloVersion: 0.30.0
  soloChartVersion: 0.44.0
clusters:
  cluster-a:
    name: cluster-a
    namespace: solo
    deployment: dep
components:
  consensusNodes:
    node1:
      name: node1
      nodeId: 0
      namespace: solo
      cluster: cluster-a
    node2:
      name: node2
      nodeId: 1
      namespace: solo
      cluster: cluster-a
commandHistory:
  - network deploy
lastExecutedCommand: network deploy
`
	f := newRemoteFixture(t, &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: RemoteConfigMapName, Namespace: testNamespace},
		Data:       map[string]string{RemoteConfigDataKey: legacy},
	})
	ctx := context.Background()
	require.NoError(t, f.state.Load(ctx, testNamespace, "kind-a"))

	cfg, err := f.state.Configuration()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.SchemaVersion())
	assert.Equal(t, model.LedgerPhaseInitialized, cfg.LedgerPhase())

	wrapper := cfg.Components()
	node, err := wrapper.GetComponent(components.ConsensusNode, 1)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseStarted, node.StateMetadata().Phase)
	assert.Equal(t, 3, wrapper.GetNewComponentID(components.ConsensusNode))

	stored := f.stored(t, "kind-a")
	assert.Equal(t, 4, stored["schemaVersion"], "the migrated document is written back")
	assert.NotContains(t, stored, "components")
}

func TestRemoteConfig_Delete(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()
	require.NoError(t, f.state.Create(ctx, createOptions()))
	require.NoError(t, f.state.Modify(ctx, func(c *RemoteConfig) error {
		c.AddCluster(model.Cluster{Name: "cluster-b", Namespace: testNamespace, Deployment: "dep"})
		return nil
	}))
	require.True(t, f.exists("kind-b"))

	require.NoError(t, f.state.Delete(ctx))
	assert.False(t, f.exists("kind-a"))
	assert.False(t, f.exists("kind-b"))
	assert.False(t, f.state.IsLoaded())
}

func TestRemoteConfig_AbortedModifyIsNotPersistedLater(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()
	require.NoError(t, f.state.Create(ctx, createOptions()))
	before := f.stored(t, "kind-a")

	aborted := errors.New("aborted")
	err := f.state.Modify(ctx, func(c *RemoteConfig) error {
		c.SetLedgerPhase(model.LedgerPhaseInitialized)
		c.AddCluster(model.Cluster{Name: "leaked", Namespace: testNamespace, Deployment: "dep"})
		return aborted
	})
	require.ErrorIs(t, err, aborted)
	assert.Equal(t, before, f.stored(t, "kind-a"))

	cfg, err := f.state.Configuration()
	require.NoError(t, err)
	assert.Equal(t, model.LedgerPhaseUninitialized, cfg.LedgerPhase())
	_, ok := cfg.Cluster("leaked")
	assert.False(t, ok)

	require.NoError(t, f.state.AddCommandToHistory(ctx, "node start"))

	reader := NewRemoteConfigRuntimeState(RemoteConfigOptions{Clients: f.state.clients, Logger: testLogger()})
	require.NoError(t, reader.Load(ctx, testNamespace, "kind-a"))
	cfg, err = reader.Configuration()
	require.NoError(t, err)
	assert.Equal(t, model.LedgerPhaseUninitialized, cfg.LedgerPhase())
	_, ok = cfg.Cluster("leaked")
	assert.False(t, ok)
	assert.Equal(t, []string{"deployment create", "node start"}, cfg.Commands())
}

func TestRemoteConfig_FailedWriteRestoresLoadedConfig(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()
	require.NoError(t, f.state.Create(ctx, createOptions()))

	failing, ok := f.clientsets["kind-b"].(*k8sfake.Clientset)
	require.True(t, ok)
	failing.PrependReactor("create", "configmaps", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, fmt.Errorf("apiserver unavailable")
	})

	err := f.state.Modify(ctx, func(c *RemoteConfig) error {
		c.AddCluster(model.Cluster{Name: "cluster-b", Namespace: testNamespace, Deployment: "dep"})
		return nil
	})
	var stateErr *RuntimeStateError
	require.ErrorAs(t, err, &stateErr)

	cfg, err := f.state.Configuration()
	require.NoError(t, err)
	_, ok = cfg.Cluster("cluster-b")
	assert.False(t, ok, "the loaded config is restored")

	require.NoError(t, f.state.Persist(ctx))
	clusters, ok := f.stored(t, "kind-a")["clusters"].([]any)
	require.True(t, ok)
	assert.Len(t, clusters, 1)
}

func TestRemoteConfig_HistoryIsCapped(t *testing.T) {
	f := newRemoteFixture(t)
	ctx := context.Background()
	f.state.maxHistory = 3
	require.NoError(t, f.state.Create(ctx, createOptions()))

	for i := 1; i <= 4; i++ {
		require.NoError(t, f.state.AddCommandToHistory(ctx, fmt.Sprintf("cmd %d", i)))
	}

	cfg, err := f.state.Configuration()
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd 2", "cmd 3", "cmd 4"}, cfg.Commands())
	assert.Equal(t, "cmd 4", cfg.LastExecutedCommand())

	history, ok := f.stored(t, "kind-a")["history"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"cmd 2", "cmd 3", "cmd 4"}, history["commands"])
}

func TestNewRemoteConfigRuntimeState_DefaultHistoryCap(t *testing.T) {
	s := NewRemoteConfigRuntimeState(RemoteConfigOptions{Logger: testLogger()})
	assert.Equal(t, DefaultMaxCommandHistory, s.maxHistory)
}
