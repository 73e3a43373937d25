package runtimestate

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"hiero-solo/pkg/data/backend"
	"hiero-solo/pkg/data/configuration"
	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/schema"
	"hiero-solo/pkg/data/schema/migration"
	"hiero-solo/pkg/data/schema/model"
)

// LocalConfigFileName is the default name of the local config file.
const LocalConfigFileName = "local-config.yaml"

const localConfigState = "LocalConfig"

// LocalConfigOptions holds the parameters of a LocalConfigRuntimeState.
type LocalConfigOptions struct {
	// BasePath is the directory holding the file, usually the solo home.
	BasePath string
	FileName string

	Mapper    *mapper.ObjectMapper
	Migration migration.Options
	Recorder  configuration.Recorder
	Logger    *slog.Logger
}

// LocalConfigRuntimeState owns the operator's local config file.
type LocalConfigRuntimeState struct {
	fileName   string
	backend    *backend.YamlFileStorageBackend
	definition *schema.Definition[model.LocalConfig]
	source     *configuration.ModelConfigSource[model.LocalConfig]
	logger     *slog.Logger

	mu sync.Mutex
}

// NewLocalConfigRuntimeState creates the state; call Load before use.
func NewLocalConfigRuntimeState(opts LocalConfigOptions) *LocalConfigRuntimeState {
	if opts.FileName == "" {
		opts.FileName = LocalConfigFileName
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Mapper == nil {
		opts.Mapper = mapper.New(key.NewConfigFormatter())
	}

	b := backend.NewYamlFileStorageBackend(opts.BasePath)
	definition := migration.NewLocalConfigDefinition(opts.Mapper, opts.Migration)
	return &LocalConfigRuntimeState{
		fileName:   opts.FileName,
		backend:    b,
		definition: definition,
		source: configuration.NewModelConfigSource(configuration.ModelConfigSourceConfig[model.LocalConfig]{
			Name:       localConfigState,
			Ordinal:    configuration.LocalOrdinal,
			Key:        opts.FileName,
			Backend:    b,
			Definition: definition,
			Recorder:   opts.Recorder,
			Logger:     opts.Logger,
		}),
		logger: opts.Logger,
	}
}

// Source returns the typed source, for layering the local config into a
// Config.
func (s *LocalConfigRuntimeState) Source() *configuration.ModelConfigSource[model.LocalConfig] {
	return s.source
}

// ConfigFileExists reports whether the local config file is present.
func (s *LocalConfigRuntimeState) ConfigFileExists(ctx context.Context) (bool, error) {
	_, err := s.backend.ReadBytes(ctx, s.fileName)
	if err == nil {
		return true, nil
	}
	if backend.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// Load reads the file, migrating it to the current schema version. A
// migrated document is written back. A missing file is created from an
// empty document.
func (s *LocalConfigRuntimeState) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.ConfigFileExists(ctx)
	if err != nil {
		return &RuntimeStateError{State: localConfigState, Operation: "check config file", Err: err}
	}

	if !exists {
		cfg, err := s.definition.Transform(map[string]any{})
		if err != nil {
			return &RuntimeStateError{State: localConfigState, Operation: "create config", Err: err}
		}
		s.source.SetModelData(cfg)
		s.logger.Info("creating local config", "file", s.fileName)
		return s.source.Persist(ctx)
	}

	if err := s.source.Load(ctx); err != nil {
		return err
	}
	if s.source.Migrated() {
		return s.source.Persist(ctx)
	}
	return nil
}

// IsLoaded reports whether Load has succeeded.
func (s *LocalConfigRuntimeState) IsLoaded() bool {
	return s.source.IsLoaded()
}

// Configuration returns the loaded config.
func (s *LocalConfigRuntimeState) Configuration() (*LocalConfig, error) {
	m := s.source.ModelData()
	if m == nil {
		return nil, &ReadBeforeLoadError{State: localConfigState}
	}
	return &LocalConfig{model: m}, nil
}

// Persist writes the loaded config back to the file.
func (s *LocalConfigRuntimeState) Persist(ctx context.Context) error {
	if !s.source.IsLoaded() {
		return &WriteBeforeLoadError{State: localConfigState}
	}
	return s.source.Persist(ctx)
}

// Modify applies fn to the loaded config and persists the result. When fn
// or the write fails, nothing is written and the loaded config keeps its
// previous contents.
func (s *LocalConfigRuntimeState) Modify(ctx context.Context, fn func(*LocalConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.source.IsLoaded() {
		return &WriteBeforeLoadError{State: localConfigState}
	}
	return s.source.Update(ctx, func(m *model.LocalConfig) error {
		return fn(&LocalConfig{model: m})
	}, nil)
}

// DeploymentByName returns the named deployment.
func (s *LocalConfigRuntimeState) DeploymentByName(name string) (Deployment, error) {
	cfg, err := s.Configuration()
	if err != nil {
		return Deployment{}, err
	}
	return cfg.Deployment(name)
}

// RealmForDeployment returns the realm of the named deployment.
func (s *LocalConfigRuntimeState) RealmForDeployment(name string) (int, error) {
	d, err := s.DeploymentByName(name)
	if err != nil {
		return 0, err
	}
	return d.Realm(), nil
}

// ShardForDeployment returns the shard of the named deployment.
func (s *LocalConfigRuntimeState) ShardForDeployment(name string) (int, error) {
	d, err := s.DeploymentByName(name)
	if err != nil {
		return 0, err
	}
	return d.Shard(), nil
}

// LocalConfig is the view over a loaded local config. Mutators change the
// loaded model; use LocalConfigRuntimeState.Modify to persist them.
type LocalConfig struct {
	model *model.LocalConfig
}

// Object returns the config as a plain document.
func (c *LocalConfig) Object() (map[string]any, error) { return mapper.FromModel(c.model) }

func (c *LocalConfig) SchemaVersion() int               { return c.model.SchemaVersion }
func (c *LocalConfig) UserIdentity() model.UserIdentity { return c.model.UserIdentity }
func (c *LocalConfig) Versions() ApplicationVersions {
	return NewApplicationVersions(&c.model.Versions)
}
func (c *LocalConfig) ClusterRefs() map[string]string { return maps.Clone(c.model.ClusterRefs) }
func (c *LocalConfig) ClusterRef(ref string) (string, bool) {
	ctx, ok := c.model.ClusterRefs[ref]
	return ctx, ok
}

// Deployments returns every known deployment.
func (c *LocalConfig) Deployments() []Deployment {
	out := make([]Deployment, 0, len(c.model.Deployments))
	for _, d := range c.model.Deployments {
		out = append(out, Deployment{deployment: d})
	}
	return out
}

// Deployment returns the named deployment.
func (c *LocalConfig) Deployment(name string) (Deployment, error) {
	d, ok := c.model.Deployment(name)
	if !ok {
		return Deployment{}, &DeploymentNotFoundError{Name: name}
	}
	return Deployment{deployment: *d}, nil
}

// AddDeployment registers a deployment. Adding a known name is a no-op.
func (c *LocalConfig) AddDeployment(name, namespace string, realm, shard int) {
	c.model.AddDeployment(name, namespace, realm, shard)
}

// RemoveDeployment forgets the named deployment.
func (c *LocalConfig) RemoveDeployment(name string) error {
	if !c.model.RemoveDeployment(name) {
		return &DeploymentNotFoundError{Name: name}
	}
	return nil
}

// AddClusterRef maps a cluster reference to a kubeconfig context.
func (c *LocalConfig) AddClusterRef(ref, contextName string) {
	c.model.AddClusterRef(ref, contextName)
}

// RemoveClusterRef drops a cluster reference.
func (c *LocalConfig) RemoveClusterRef(ref string) {
	c.model.RemoveClusterRef(ref)
}

// AddClusterRefToDeployment attaches a cluster reference to a deployment.
func (c *LocalConfig) AddClusterRefToDeployment(ref, deployment string) error {
	if !c.model.AddClusterRefToDeployment(ref, deployment) {
		return &DeploymentNotFoundError{Name: deployment}
	}
	return nil
}

// Deployment is a read view over a local deployment entry.
type Deployment struct {
	deployment model.Deployment
}

func (d Deployment) Name() string       { return d.deployment.Name }
func (d Deployment) Namespace() string  { return d.deployment.Namespace }
func (d Deployment) Clusters() []string { return slices.Clone(d.deployment.Clusters) }
func (d Deployment) Realm() int         { return d.deployment.Realm }
func (d Deployment) Shard() int         { return d.deployment.Shard }
