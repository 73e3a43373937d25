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
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"hiero-solo/pkg/components"
	"hiero-solo/pkg/data/backend"
	"hiero-solo/pkg/data/configuration"
	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/schema"
	"hiero-solo/pkg/data/schema/migration"
	"hiero-solo/pkg/data/schema/model"
	"hiero-solo/pkg/k8s/client"
)

const (
	// RemoteConfigMapName is the ConfigMap holding a deployment's remote
	// config, one per participating cluster.
	RemoteConfigMapName = "solo-remote-config"

	// RemoteConfigDataKey is the ConfigMap data entry holding the document.
	RemoteConfigDataKey = "remote-config-data"

	remoteConfigState = "RemoteConfig"
)

// RemoteConfigLabels are applied to every remote config ConfigMap.
var RemoteConfigLabels = map[string]string{
	"app.kubernetes.io/managed-by": "solo",
	"solo.hedera.com/type":         "remote-config",
}

// RemoteConfigOptions holds the parameters of a RemoteConfigRuntimeState.
type RemoteConfigOptions struct {
	Clients client.Provider

	// Local resolves cluster references to kubeconfig contexts. Without a
	// loaded local config, only the context the config was loaded from is
	// written.
	Local *LocalConfigRuntimeState

	// MaxCommandHistory caps the recorded command history. Zero uses
	// DefaultMaxCommandHistory.
	MaxCommandHistory int

	Mapper    *mapper.ObjectMapper
	Migration migration.Options
	Recorder  configuration.Recorder
	Logger    *slog.Logger
}

// DefaultMaxCommandHistory is the history size used when none is set.
const DefaultMaxCommandHistory = 50

// RemoteConfigRuntimeState owns the remote config of one deployment. The
// document is replicated to every cluster of the deployment; reads come
// from the context it was loaded from.
type RemoteConfigRuntimeState struct {
	clients    client.Provider
	local      *LocalConfigRuntimeState
	definition *schema.Definition[model.RemoteConfig]
	migration  migration.Options
	maxHistory int
	recorder   configuration.Recorder
	logger     *slog.Logger

	mu          sync.Mutex
	namespace   string
	contextName string
	source      *configuration.ModelConfigSource[model.RemoteConfig]
}

// NewRemoteConfigRuntimeState creates the state; call Load or Create
// before use.
func NewRemoteConfigRuntimeState(opts RemoteConfigOptions) *RemoteConfigRuntimeState {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Mapper == nil {
		opts.Mapper = mapper.New(key.NewConfigFormatter())
	}
	if opts.MaxCommandHistory <= 0 {
		opts.MaxCommandHistory = DefaultMaxCommandHistory
	}
	return &RemoteConfigRuntimeState{
		clients:    opts.Clients,
		local:      opts.Local,
		definition: migration.NewRemoteConfigDefinition(opts.Mapper, opts.Migration),
		migration:  opts.Migration,
		maxHistory: opts.MaxCommandHistory,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
	}
}

func (s *RemoteConfigRuntimeState) newSource(c *client.Client, namespace string) *configuration.ModelConfigSource[model.RemoteConfig] {
	return configuration.NewModelConfigSource(configuration.ModelConfigSourceConfig[model.RemoteConfig]{
		Name:       remoteConfigState,
		Ordinal:    configuration.RemoteOrdinal,
		Key:        RemoteConfigDataKey,
		Backend:    s.backend(c, namespace),
		Definition: s.definition,
		Recorder:   s.recorder,
		Logger:     s.logger,
	})
}

func (s *RemoteConfigRuntimeState) backend(c *client.Client, namespace string) *backend.YamlConfigMapStorageBackend {
	return backend.NewYamlConfigMapStorageBackend(c, namespace, RemoteConfigMapName, RemoteConfigLabels, s.logger)
}

// Load reads the remote config of namespace from the cluster behind
// contextName. A migrated document is written back to every cluster.
func (s *RemoteConfigRuntimeState) Load(ctx context.Context, namespace, contextName string) error {
	c, err := s.clients.ForContext(contextName)
	if err != nil {
		return &RuntimeStateError{State: remoteConfigState, Operation: "resolve context " + contextName, Err: err}
	}

	source := s.newSource(c, namespace)
	if err := source.Load(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace = namespace
	s.contextName = contextName
	s.source = source

	s.logger.Debug("remote config loaded",
		"namespace", namespace,
		"context", contextName,
		"schema_version", source.ModelData().SchemaVersion)

	if source.Migrated() {
		return s.persist(ctx)
	}
	return nil
}

// IsLoaded reports whether Load or Create has succeeded.
func (s *RemoteConfigRuntimeState) IsLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source != nil && s.source.IsLoaded()
}

// Namespace returns the namespace the config was loaded from.
func (s *RemoteConfigRuntimeState) Namespace() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namespace
}

func (s *RemoteConfigRuntimeState) model() *model.RemoteConfig {
	if s.source == nil {
		return nil
	}
	return s.source.ModelData()
}

// Configuration returns the loaded config.
func (s *RemoteConfigRuntimeState) Configuration() (*RemoteConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.model()
	if m == nil {
		return nil, &ReadBeforeLoadError{State: remoteConfigState}
	}
	return &RemoteConfig{model: m}, nil
}

// Components returns a wrapper over the loaded deployment state. Changes
// made through it are written by the next Persist or Modify.
func (s *RemoteConfigRuntimeState) Components() (*components.ComponentsDataWrapper, error) {
	cfg, err := s.Configuration()
	if err != nil {
		return nil, err
	}
	return cfg.Components(), nil
}

// CreateOptions describes a new deployment's remote config.
type CreateOptions struct {
	Namespace   string
	ContextName string
	Deployment  string
	ClusterRef  string

	// NodeIDs are the component ids of the initial consensus nodes.
	NodeIDs []int

	DNSBaseDomain           string
	DNSConsensusNodePattern string
	Versions                model.ApplicationVersions

	// Command, when set, is recorded as the first history entry.
	Command string
}

// Create writes a fresh remote config for a new deployment, with the
// initial consensus nodes in the requested phase.
func (s *RemoteConfigRuntimeState) Create(ctx context.Context, opts CreateOptions) error {
	c, err := s.clients.ForContext(opts.ContextName)
	if err != nil {
		return &RuntimeStateError{State: remoteConfigState, Operation: "resolve context " + opts.ContextName, Err: err}
	}

	cfg := &model.RemoteConfig{
		SchemaVersion: int(s.definition.CurrentVersion()),
		Versions:      opts.Versions,
		Clusters: []model.Cluster{{
			Name:                    opts.ClusterRef,
			Namespace:               opts.Namespace,
			Deployment:              opts.Deployment,
			DNSBaseDomain:           opts.DNSBaseDomain,
			DNSConsensusNodePattern: opts.DNSConsensusNodePattern,
		}},
		State: model.DeploymentState{
			LedgerPhase: model.LedgerPhaseUninitialized,
			ComponentIDs: model.ComponentIDs{
				ConsensusNodes: 1, BlockNodes: 1, MirrorNodes: 1, RelayNodes: 1,
				HAProxies: 1, EnvoyProxies: 1, Explorers: 1,
			},
			ConsensusNodes:     []model.ConsensusNodeState{},
			BlockNodes:         []model.ComponentState{},
			MirrorNodes:        []model.ComponentState{},
			RelayNodes:         []model.RelayNodeState{},
			HAProxies:          []model.ComponentState{},
			EnvoyProxies:       []model.ComponentState{},
			Explorers:          []model.ComponentState{},
			ExternalBlockNodes: []model.ExternalBlockNodeState{},
		},
		History: model.DeploymentHistory{Commands: []string{}},
	}
	if cfg.Versions.CLI == "" {
		cfg.Versions.CLI = s.migration.CLIVersion
	}

	wrapper := components.NewComponentsDataWrapper(&cfg.State)
	factory := components.NewComponentFactory(wrapper)
	for _, node := range factory.CreateConsensusNodeComponentsFromNodeIDs(opts.NodeIDs, opts.ClusterRef, opts.Namespace) {
		if err := wrapper.AddNewComponent(node, components.ConsensusNode); err != nil {
			return &RuntimeStateError{State: remoteConfigState, Operation: "create", Err: err}
		}
	}
	if opts.Command != "" {
		cfg.AddCommand(opts.Command, s.maxHistory)
	}

	source := s.newSource(c, opts.Namespace)
	source.SetModelData(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace = opts.Namespace
	s.contextName = opts.ContextName
	s.source = source
	s.touch(cfg)

	s.logger.Info("creating remote config",
		"namespace", opts.Namespace,
		"context", opts.ContextName,
		"deployment", opts.Deployment,
		"consensus_nodes", len(opts.NodeIDs))
	return s.persist(ctx)
}

// Persist writes the loaded config to every cluster of the deployment.
func (s *RemoteConfigRuntimeState) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model() == nil {
		return &WriteBeforeLoadError{State: remoteConfigState}
	}
	return s.persist(ctx)
}

// Modify applies fn to the loaded config, stamps the metadata and writes
// the result to every cluster. When fn fails nothing is written. When fn
// or the write fails the loaded config keeps its previous contents; a
// failed write may still have reached some clusters.
func (s *RemoteConfigRuntimeState) Modify(ctx context.Context, fn func(*RemoteConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model() == nil {
		return &WriteBeforeLoadError{State: remoteConfigState}
	}
	return s.source.Update(ctx, func(m *model.RemoteConfig) error {
		if err := fn(&RemoteConfig{model: m}); err != nil {
			return err
		}
		s.touch(m)
		return nil
	}, s.persist)
}

// AddCommandToHistory records command as the last executed command,
// dropping the oldest entries beyond the history cap.
func (s *RemoteConfigRuntimeState) AddCommandToHistory(ctx context.Context, command string) error {
	return s.Modify(ctx, func(c *RemoteConfig) error {
		c.model.AddCommand(command, s.maxHistory)
		return nil
	})
}

// UpdateComponentVersion records the deployed version of a component.
func (s *RemoteConfigRuntimeState) UpdateComponentVersion(ctx context.Context, component VersionComponent, version *semver.Version) error {
	return s.Modify(ctx, func(c *RemoteConfig) error {
		if !c.Versions().Set(component, version) {
			return &configuration.ConfigurationError{Key: "versions." + string(component), Message: "unknown component version"}
		}
		return nil
	})
}

// Delete removes the remote config from every cluster of the deployment.
// ConfigMaps that are already gone are skipped.
func (s *RemoteConfigRuntimeState) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model() == nil {
		return &WriteBeforeLoadError{State: remoteConfigState}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, contextName := range s.contexts() {
		g.Go(func() error {
			c, err := s.clients.ForContext(contextName)
			if err != nil {
				return err
			}
			if err := c.DeleteConfigMap(gctx, s.namespace, RemoteConfigMapName); err != nil && !client.IsNotFound(err) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &RuntimeStateError{State: remoteConfigState, Operation: "delete", Err: err}
	}

	s.logger.Info("remote config deleted", "namespace", s.namespace)
	s.source = nil
	return nil
}

// persist fans the document out to every context. Callers hold mu.
func (s *RemoteConfigRuntimeState) persist(ctx context.Context) error {
	contexts := s.contexts()
	obj, err := s.definition.ToObject(s.model())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, contextName := range contexts {
		if contextName == s.contextName {
			g.Go(func() error { return s.source.Persist(gctx) })
			continue
		}
		g.Go(func() error {
			c, err := s.clients.ForContext(contextName)
			if err != nil {
				return err
			}
			return s.backend(c, s.namespace).WriteObject(gctx, RemoteConfigDataKey, obj)
		})
	}
	if err := g.Wait(); err != nil {
		return &RuntimeStateError{State: remoteConfigState, Operation: "persist", Err: err}
	}

	s.logger.Debug("remote config persisted", "namespace", s.namespace, "contexts", contexts)
	return nil
}

// contexts returns the load context plus the context of every cluster
// reference the local config can resolve. Callers hold mu.
func (s *RemoteConfigRuntimeState) contexts() []string {
	seen := map[string]bool{s.contextName: true}
	if m := s.model(); m != nil && s.local != nil {
		if local, err := s.local.Configuration(); err == nil {
			for _, cluster := range m.Clusters {
				if ctxName, ok := local.ClusterRef(cluster.Name); ok && ctxName != "" {
					seen[ctxName] = true
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *RemoteConfigRuntimeState) touch(m *model.RemoteConfig) {
	now := time.Now
	if s.migration.Now != nil {
		now = s.migration.Now
	}
	m.Metadata.LastUpdatedAt = now().UTC().Format(time.RFC3339Nano)
	m.Metadata.LastUpdatedBy = s.identity()
}

func (s *RemoteConfigRuntimeState) identity() model.UserIdentity {
	if s.local != nil {
		if local, err := s.local.Configuration(); err == nil {
			if id := local.UserIdentity(); id.Name != "" {
				return id
			}
		}
	}
	if s.migration.Identity != nil {
		return s.migration.Identity()
	}
	return model.UserIdentity{}
}

// RemoteConfig is the view over a loaded remote config.
type RemoteConfig struct {
	model *model.RemoteConfig
}

// Object returns the config as a plain document.
func (c *RemoteConfig) Object() (map[string]any, error) { return mapper.FromModel(c.model) }

func (c *RemoteConfig) SchemaVersion() int                   { return c.model.SchemaVersion }
func (c *RemoteConfig) Metadata() model.RemoteConfigMetadata { return c.model.Metadata }
func (c *RemoteConfig) Clusters() []model.Cluster            { return slices.Clone(c.model.Clusters) }
func (c *RemoteConfig) LedgerPhase() model.LedgerPhase       { return c.model.State.LedgerPhase }
func (c *RemoteConfig) Commands() []string                   { return slices.Clone(c.model.History.Commands) }
func (c *RemoteConfig) LastExecutedCommand() string          { return c.model.History.LastExecutedCommand }

// Versions returns the recorded component versions. Setters write through.
func (c *RemoteConfig) Versions() ApplicationVersions {
	return NewApplicationVersions(&c.model.Versions)
}

// Cluster returns the named cluster.
func (c *RemoteConfig) Cluster(name string) (model.Cluster, bool) {
	cluster, ok := c.model.Cluster(name)
	if !ok {
		return model.Cluster{}, false
	}
	return *cluster, true
}

// AddCluster adds a cluster unless one with the same name exists.
func (c *RemoteConfig) AddCluster(cluster model.Cluster) bool {
	if _, ok := c.model.Cluster(cluster.Name); ok {
		return false
	}
	c.model.Clusters = append(c.model.Clusters, cluster)
	return true
}

// SetLedgerPhase records the ledger phase.
func (c *RemoteConfig) SetLedgerPhase(phase model.LedgerPhase) {
	c.model.State.LedgerPhase = phase
}

// Components returns a wrapper over the deployment state.
func (c *RemoteConfig) Components() *components.ComponentsDataWrapper {
	return components.NewComponentsDataWrapper(&c.model.State)
}
