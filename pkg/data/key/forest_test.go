package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForest(t *testing.T) *Forest {
	t.Helper()

	f, err := NewForest(map[string]string{
		"schemaVersion":             "1",
		"deployments.0.name":        "alpha",
		"deployments.0.clusters.0":  "c1",
		"deployments.0.clusters.1":  "c2",
		"deployments.2.name":        "gamma",
		"clusterRefs.e2e-cluster-1": "kind-e2e",
		"userIdentity.name":         "alice",
		"userIdentity.hostname":     "host",
	}, NewConfigFormatter())
	require.NoError(t, err)
	return f
}

func TestForest_Lookups(t *testing.T) {
	f := newTestForest(t)

	assert.Equal(t, 8, f.Len())
	assert.True(t, f.Has("deployments"))
	assert.True(t, f.Has("deployments.0.clusters"))
	assert.False(t, f.Has("deployments.1"))
	assert.False(t, f.Has("versions"))

	v, ok := f.Value("deployments.0.clusters.1")
	assert.True(t, ok)
	assert.Equal(t, "c2", v)

	_, ok = f.Value("deployments.0")
	assert.False(t, ok, "intermediate nodes carry no value")
}

func TestForest_ArrayLength(t *testing.T) {
	f := newTestForest(t)

	assert.Equal(t, 3, f.ArrayLength("deployments"))
	assert.Equal(t, 2, f.ArrayLength("deployments.0.clusters"))
	assert.Equal(t, 0, f.ArrayLength("userIdentity"))
	assert.Equal(t, 0, f.ArrayLength("missing"))
}

func TestForest_ChildrenOrder(t *testing.T) {
	f, err := NewForest(map[string]string{
		"a.10": "x",
		"a.2":  "y",
		"a.b":  "z",
	}, NewConfigFormatter())
	require.NoError(t, err)

	n, ok := f.Node("a")
	require.True(t, ok)
	assert.Equal(t, []string{"2", "10", "b"}, n.Children())
}

func TestForest_Keys(t *testing.T) {
	f := newTestForest(t)

	assert.Equal(t, []string{"userIdentity.hostname", "userIdentity.name"}, f.Keys("userIdentity"))
	assert.Len(t, f.Keys(""), 8)
	assert.Nil(t, f.Keys("nope"))
}

func TestForest_InvalidKey(t *testing.T) {
	_, err := NewForest(map[string]string{"a..b": "x"}, NewConfigFormatter())
	require.Error(t, err)
}

func TestForest_Flat(t *testing.T) {
	f := newTestForest(t)

	flat := f.Flat()
	assert.Len(t, flat, 8)
	assert.Equal(t, "kind-e2e", flat["clusterRefs.e2e-cluster-1"])

	flat["schemaVersion"] = "9"
	v, _ := f.Value("schemaVersion")
	assert.Equal(t, "1", v, "the copy does not alias the forest")
}

func TestForest_EnvironmentKeysVerbatim(t *testing.T) {
	f, err := NewForest(map[string]string{
		"CLUSTER-REFS_e2e-cluster-1": "kind-e2e",
		"HELM-CHART_DIRECTORY":       "/charts",
	}, NewEnvironmentFormatter())
	require.NoError(t, err)

	n, ok := f.Node("CLUSTER-REFS")
	require.True(t, ok)
	assert.Equal(t, []string{"e2e-cluster-1"}, n.Children())
	assert.Equal(t, []string{"CLUSTER-REFS_e2e-cluster-1"}, f.Keys("CLUSTER-REFS"))
}
