package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiero-solo/pkg/data/key"
)

var (
	testIdentity = NewDescriptor("identity",
		String("name"),
		String("hostname"),
	)
	testDeployment = NewDescriptor("deployment",
		String("name"),
		String("namespace"),
		ScalarArray("clusters", TypeString),
		Int("realm"),
		Int("shard"),
	)
	testDocument = NewDescriptor("document",
		Int("schemaVersion"),
		Bool("enabled"),
		Float("ratio"),
		Time("updatedAt"),
		SemVer("cli"),
		Object("userIdentity", testIdentity),
		ObjectArray("deployments", testDeployment),
		ScalarMap("clusterRefs", TypeString),
		ObjectMap("owners", testIdentity),
	)
)

type testIdentityModel struct {
	Name     string `yaml:"name"`
	Hostname string `yaml:"hostname"`
}

type testDeploymentModel struct {
	Name      string   `yaml:"name"`
	Namespace string   `yaml:"namespace"`
	Clusters  []string `yaml:"clusters"`
	Realm     int      `yaml:"realm"`
	Shard     int      `yaml:"shard"`
}

type testDocumentModel struct {
	SchemaVersion int                          `yaml:"schemaVersion"`
	Enabled       bool                         `yaml:"enabled"`
	Ratio         float64                      `yaml:"ratio"`
	UpdatedAt     string                       `yaml:"updatedAt,omitempty"`
	CLI           string                       `yaml:"cli,omitempty"`
	UserIdentity  testIdentityModel            `yaml:"userIdentity"`
	Deployments   []testDeploymentModel        `yaml:"deployments"`
	ClusterRefs   map[string]string            `yaml:"clusterRefs"`
	Owners        map[string]testIdentityModel `yaml:"owners"`
}

func newConfigMapper() *ObjectMapper {
	return New(key.NewConfigFormatter())
}

func sampleDocument() map[string]any {
	return map[string]any{
		"schemaVersion": 1,
		"enabled":       true,
		"ratio":         0.5,
		"updatedAt":     "2024-05-01T10:00:00Z",
		"cli":           "0.40.0",
		"userIdentity":  map[string]any{"name": "alice", "hostname": "box"},
		"deployments": []any{
			map[string]any{
				"name":      "alpha",
				"namespace": "solo-alpha",
				"clusters":  []any{"c1", "c2"},
				"realm":     0,
				"shard":     0,
			},
		},
		"clusterRefs": map[string]any{"c1": "kind-c1"},
		"owners":      map[string]any{"ops": map[string]any{"name": "bob"}},
	}
}

func TestToFlatKeyMap(t *testing.T) {
	m := newConfigMapper()

	flat, err := m.ToFlatKeyMap(testDocument, sampleDocument())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"schemaVersion":            "1",
		"enabled":                  "true",
		"ratio":                    "0.5",
		"updatedAt":                "2024-05-01T10:00:00Z",
		"cli":                      "0.40.0",
		"userIdentity.name":        "alice",
		"userIdentity.hostname":    "box",
		"deployments.0.name":       "alpha",
		"deployments.0.namespace":  "solo-alpha",
		"deployments.0.clusters.0": "c1",
		"deployments.0.clusters.1": "c2",
		"deployments.0.realm":      "0",
		"deployments.0.shard":      "0",
		"clusterRefs.c1":           "kind-c1",
		"owners.ops.name":          "bob",
	}, flat)
}

func TestRoundTrip_PlainDocument(t *testing.T) {
	m := newConfigMapper()
	doc := sampleDocument()

	flat, err := m.ToFlatKeyMap(testDocument, doc)
	require.NoError(t, err)

	back, err := m.FromFlatKeyMap(testDocument, flat)
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	again, err := m.ToFlatKeyMap(testDocument, back)
	require.NoError(t, err)
	assert.Equal(t, flat, again)
}

func TestRoundTrip_Model(t *testing.T) {
	m := newConfigMapper()
	model := testDocumentModel{
		SchemaVersion: 2,
		Enabled:       true,
		Ratio:         1.25,
		UserIdentity:  testIdentityModel{Name: "alice", Hostname: "box"},
		Deployments: []testDeploymentModel{
			{Name: "alpha", Namespace: "ns", Clusters: []string{"c1"}, Realm: 1, Shard: 2},
			{Name: "beta", Namespace: "ns2", Clusters: []string{"c1", "c2"}},
		},
		ClusterRefs: map[string]string{"c1": "kind-c1", "c2": "kind-c2"},
		Owners:      map[string]testIdentityModel{"ops": {Name: "bob", Hostname: "h"}},
	}

	flat, err := m.ModelToFlatKeyMap(testDocument, &model)
	require.NoError(t, err)

	var back testDocumentModel
	require.NoError(t, m.FlatKeyMapToModel(testDocument, flat, &back))
	assert.Equal(t, model, back)
}

func TestFromFlatKeyMap_Coercion(t *testing.T) {
	m := newConfigMapper()

	obj, err := m.FromFlatKeyMap(testDocument, map[string]string{
		"schemaVersion":       "3",
		"enabled":             "false",
		"ratio":               "2",
		"deployments.1.realm": "7",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, obj["schemaVersion"])
	assert.Equal(t, false, obj["enabled"])
	assert.Equal(t, 2.0, obj["ratio"])

	deployments := obj["deployments"].([]any)
	require.Len(t, deployments, 2)
	assert.Equal(t, map[string]any{}, deployments[0])
	assert.Equal(t, 7, deployments[1].(map[string]any)["realm"])
}

func TestApplyPropertyValue_Errors(t *testing.T) {
	m := newConfigMapper()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown top-level", key: "bogus", value: "x"},
		{name: "unknown nested", key: "userIdentity.email", value: "x"},
		{name: "child of scalar", key: "schemaVersion.x", value: "1"},
		{name: "non-index array segment", key: "deployments.first.name", value: "x"},
		{name: "bad int", key: "schemaVersion", value: "one"},
		{name: "bad bool", key: "enabled", value: "maybe"},
		{name: "bad time", key: "updatedAt", value: "yesterday"},
		{name: "bad semver", key: "cli", value: "not-a-version"},
		{name: "bad json blob", key: "userIdentity", value: "{"},
		{name: "json blob with unknown key", key: "userIdentity", value: `{"email":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ApplyPropertyValue(testDocument, map[string]any{}, tt.key, tt.value)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Contains(t, cfgErr.Key, tt.key)
		})
	}
}

func TestApplyPropertyValue_JSONBlob(t *testing.T) {
	m := newConfigMapper()
	obj := map[string]any{}

	err := m.ApplyPropertyValue(testDocument, obj, "deployments",
		`[{"name":"alpha","namespace":"ns","clusters":["c1"],"realm":1,"shard":0}]`)
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"name": "alpha", "namespace": "ns", "clusters": []any{"c1"}, "realm": 1, "shard": 0},
	}, obj["deployments"])

	err = m.ApplyPropertyValue(testDocument, obj, "deployments.0.clusters", `["c2","c3"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"c2", "c3"}, obj["deployments"].([]any)[0].(map[string]any)["clusters"])
}

func TestPutScalarAndObject(t *testing.T) {
	m := newConfigMapper()
	obj := map[string]any{}

	require.NoError(t, m.PutScalar(testDocument, obj, "schemaVersion", 4))
	require.NoError(t, m.PutScalar(testDocument, obj, "clusterRefs.c9", "kind-c9"))
	require.NoError(t, m.PutObject(testDocument, obj, "userIdentity", testIdentityModel{Name: "carol", Hostname: "h"}))
	require.NoError(t, m.PutObject(testDocument, obj, "deployments.0", map[string]any{"name": "x"}))

	assert.Equal(t, 4, obj["schemaVersion"])
	assert.Equal(t, map[string]any{"c9": "kind-c9"}, obj["clusterRefs"])
	assert.Equal(t, map[string]any{"name": "carol", "hostname": "h"}, obj["userIdentity"])
	assert.Equal(t, []any{map[string]any{"name": "x"}}, obj["deployments"])
}

func TestToFlatKeyMap_Errors(t *testing.T) {
	m := newConfigMapper()
	var cfgErr *ConfigurationError

	_, err := m.ToFlatKeyMap(testDocument, map[string]any{"extra": 1})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "extra", cfgErr.Key)

	_, err = m.ToFlatKeyMap(testDocument, map[string]any{"clusterRefs": map[string]any{"a.b": "x"}})
	require.True(t, errors.As(err, &cfgErr))

	_, err = m.ToFlatKeyMap(testDocument, map[string]any{"deployments": "oops"})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "deployments", cfgErr.Key)
}

func TestEnvironmentMapper(t *testing.T) {
	m := New(key.NewEnvironmentFormatter())

	obj, err := m.FromFlatKeyMap(testDocument, map[string]string{
		"USER-IDENTITY_NAME":       "alice",
		"DEPLOYMENTS_0_CLUSTERS_0": "e2e-cluster-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", obj["userIdentity"].(map[string]any)["name"])

	flat, err := m.ToFlatKeyMap(testDocument, obj)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"USER-IDENTITY_NAME":       "alice",
		"DEPLOYMENTS_0_CLUSTERS_0": "e2e-cluster-1",
	}, flat)
}

func TestKnownKey(t *testing.T) {
	m := newConfigMapper()

	assert.True(t, m.KnownKey(testDocument, "schemaVersion"))
	assert.True(t, m.KnownKey(testDocument, "deployments"))
	assert.True(t, m.KnownKey(testDocument, "deployments.0"))
	assert.True(t, m.KnownKey(testDocument, "deployments.0.clusters.3"))
	assert.True(t, m.KnownKey(testDocument, "clusterRefs.anything"))
	assert.True(t, m.KnownKey(testDocument, "owners.ops.hostname"))

	assert.False(t, m.KnownKey(testDocument, "deployments.x"))
	assert.False(t, m.KnownKey(testDocument, "clusterRefs.a.b"))
	assert.False(t, m.KnownKey(testDocument, "schemaVersion.x"))
	assert.False(t, m.KnownKey(testDocument, "bogus"))
}

func TestConformAndPrune(t *testing.T) {
	m := newConfigMapper()
	doc := map[string]any{
		"schemaVersion": "2",
		"legacy":        true,
		"userIdentity":  map[string]any{"name": "a", "email": "x"},
	}

	_, err := m.Conform(testDocument, doc)
	require.Error(t, err)

	pruned, err := m.Prune(testDocument, doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"schemaVersion": 2,
		"userIdentity":  map[string]any{"name": "a"},
	}, pruned)
}
