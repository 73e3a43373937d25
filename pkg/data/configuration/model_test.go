package configuration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiero-solo/pkg/data/backend"
	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/schema"
)

type fakeRecorder struct {
	mu         sync.Mutex
	loads      []string
	persists   []string
	migrations []string
}

func (r *fakeRecorder) RecordSourceLoad(source string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, source)
}

func (r *fakeRecorder) RecordPersist(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persists = append(r.persists, source)
}

func (r *fakeRecorder) RecordMigration(schema string, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.migrations = append(r.migrations, schema)
}

func versionedSettingsDefinition(t *testing.T) *schema.Definition[chartSettings] {
	t.Helper()
	v1 := schema.Step(1, "default replicas", func(doc map[string]any) (map[string]any, error) {
		clone, err := schema.Prepare(doc, 0)
		if err != nil {
			return nil, err
		}
		if _, ok := clone["replicas"]; !ok {
			clone["replicas"] = 1
		}
		clone[schema.VersionKey] = 1
		return clone, nil
	})
	def, err := schema.NewDefinition[chartSettings]("settings", settingsDescriptor, mapper.New(key.NewConfigFormatter()), v1)
	require.NoError(t, err)
	return def
}

func newSettingsSource(t *testing.T, dir string, rec Recorder) *ModelConfigSource[chartSettings] {
	t.Helper()
	return NewModelConfigSource(ModelConfigSourceConfig[chartSettings]{
		Name:       "settings",
		Ordinal:    LocalOrdinal,
		Key:        "settings.yaml",
		Backend:    backend.NewYamlFileStorageBackend(dir),
		Definition: versionedSettingsDefinition(t),
		Recorder:   rec,
		Logger:     testLogger(),
	})
}

func TestModelConfigSource_LoadMigratesAndPersists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("name: legacy\nobsolete: true\n"), 0o600))

	rec := &fakeRecorder{}
	src := newSettingsSource(t, dir, rec)
	assert.False(t, src.IsLoaded())
	assert.Nil(t, src.ModelData())

	require.NoError(t, src.Load(context.Background()))
	assert.True(t, src.IsLoaded())
	assert.True(t, src.Migrated())
	assert.Equal(t, []string{"settings"}, rec.migrations)

	model := src.ModelData()
	assert.Equal(t, 1, model.SchemaVersion)
	assert.Equal(t, "legacy", model.Name)
	assert.Equal(t, 1, model.Replicas)

	model.Name = "updated"
	require.NoError(t, src.Persist(context.Background()))
	assert.Equal(t, []string{"settings"}, rec.persists)

	again := newSettingsSource(t, dir, nil)
	require.NoError(t, again.Load(context.Background()))
	assert.False(t, again.Migrated())
	assert.Equal(t, "updated", again.ModelData().Name)
	assert.Equal(t, "updated", again.Properties()["name"])

	data, err := os.ReadFile(filepath.Join(dir, "settings.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "obsolete")
}

func TestModelConfigSource_MissingDocument(t *testing.T) {
	src := newSettingsSource(t, t.TempDir(), nil)
	err := src.Load(context.Background())
	require.Error(t, err)
	assert.True(t, backend.IsNotFound(err))
}

func TestModelConfigSource_PersistBeforeLoad(t *testing.T) {
	src := newSettingsSource(t, t.TempDir(), nil)

	var unloaded *UnloadedConfigError
	require.ErrorAs(t, src.Persist(context.Background()), &unloaded)
}

func TestModelConfigSource_FutureVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("schemaVersion: 7\n"), 0o600))

	var verErr *schema.InvalidSchemaVersionError
	require.ErrorAs(t, newSettingsSource(t, dir, nil).Load(context.Background()), &verErr)
}

func TestModelConfigSource_InConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("schemaVersion: 1\nname: local\n"), 0o600))

	rec := &fakeRecorder{}
	local := newSettingsSource(t, dir, nil)
	defaults := NewMapConfigSource("defaults", DefaultOrdinal, map[string]any{
		"name":  "default",
		"chart": map[string]any{"repository": "oci://example"},
	})

	cfg, err := NewConfig("", true, testLogger(), rec, local, defaults)
	require.NoError(t, err)
	require.NoError(t, cfg.Load(context.Background()))
	assert.Equal(t, []string{"defaults", "settings"}, rec.loads)

	out, err := AsObject(cfg, versionedSettingsDefinition(t), "")
	require.NoError(t, err)
	assert.Equal(t, "local", out.Name)
	assert.Equal(t, "oci://example", out.Chart.Repository)
}

func TestModelConfigSource_UpdateRollsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("schemaVersion: 1\nname: stored\ntags: [a]\n"), 0o600))
	ctx := context.Background()

	src := newSettingsSource(t, dir, nil)
	require.NoError(t, src.Load(ctx))
	model := src.ModelData()

	aborted := errors.New("aborted")
	err := src.Update(ctx, func(m *chartSettings) error {
		m.Name = "leaked"
		m.Tags = append(m.Tags, "b")
		return aborted
	}, nil)
	require.ErrorIs(t, err, aborted)
	assert.Same(t, model, src.ModelData(), "the model is restored in place")
	assert.Equal(t, "stored", model.Name)
	assert.Equal(t, []string{"a"}, model.Tags)

	failed := errors.New("write failed")
	err = src.Update(ctx, func(m *chartSettings) error {
		m.Name = "unwritten"
		return nil
	}, func(context.Context) error { return failed })
	require.ErrorIs(t, err, failed)
	assert.Equal(t, "stored", model.Name)

	require.NoError(t, src.Update(ctx, func(m *chartSettings) error {
		m.Replicas = 3
		return nil
	}, nil))
	assert.Equal(t, "3", src.Properties()["replicas"])

	again := newSettingsSource(t, dir, nil)
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, "stored", again.ModelData().Name)
	assert.Equal(t, 3, again.ModelData().Replicas)
}

func TestModelConfigSource_UpdateBeforeLoad(t *testing.T) {
	src := newSettingsSource(t, t.TempDir(), nil)

	var unloaded *UnloadedConfigError
	require.ErrorAs(t, src.Update(context.Background(), func(*chartSettings) error { return nil }, nil), &unloaded)
}
