package runtimestate

import (
	"context"
	"io/fs"
	"log/slog"
	"sync"

	"hiero-solo/pkg/data/configuration"
	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/schema"
	"hiero-solo/pkg/data/schema/migration"
	"hiero-solo/pkg/data/schema/model"
	resconfig "hiero-solo/resources/config"
)

// Environment prefixes of the product configs.
const (
	BlockNodeEnvPrefix    = "SOLO_BLOCK_NODE"
	MirrorNodeEnvPrefix   = "SOLO_MIRROR_NODE"
	ExplorerEnvPrefix     = "SOLO_EXPLORER"
	JSONRPCRelayEnvPrefix = "SOLO_JSON_RPC_RELAY"
	SoloEnvPrefix         = "SOLO_SOLO"
)

// ProductOptions holds what every product runtime state needs.
type ProductOptions struct {
	Provider *configuration.Provider
	Mapper   *mapper.ObjectMapper
	Logger   *slog.Logger

	// FS and Dir locate the bundled defaults. They default to the files
	// embedded in resources/config.
	FS  fs.FS
	Dir string

	// Sources are added on top of the defaults and the environment, such
	// as an override source built from command-line flags.
	Sources []configuration.ConfigSource
}

// ProductConfigState is the part shared by every product runtime state.
type ProductConfigState interface {
	Name() string
	EnvPrefix() string
	Descriptor() *mapper.Descriptor
	Load(ctx context.Context) error
	IsLoaded() bool
	Object() (map[string]any, error)
}

var (
	_ ProductConfigState = (*BlockNodeConfigRuntimeState)(nil)
	_ ProductConfigState = (*MirrorNodeConfigRuntimeState)(nil)
	_ ProductConfigState = (*ExplorerConfigRuntimeState)(nil)
	_ ProductConfigState = (*JSONRPCRelayConfigRuntimeState)(nil)
	_ ProductConfigState = (*SoloConfigRuntimeState)(nil)
)

// productState loads one product config: bundled defaults, overridden by
// SOLO_<PRODUCT>_* variables, merged and bound to T.
type productState[T any] struct {
	name       string
	prefix     string
	file       string
	definition *schema.Definition[T]
	opts       ProductOptions

	mu     sync.RWMutex
	config *configuration.Config
	model  *T
}

func (o ProductOptions) withDefaults() ProductOptions {
	if o.FS == nil {
		o.FS = resconfig.FS
		o.Dir = resconfig.Dir
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Provider == nil {
		o.Provider = configuration.NewProvider(o.Logger)
	}
	if o.Mapper == nil {
		o.Mapper = mapper.New(key.NewConfigFormatter())
	}
	return o
}

func newProductState[T any](name, prefix, file string, definition *schema.Definition[T], opts ProductOptions) *productState[T] {
	return &productState[T]{
		name:       name,
		prefix:     prefix,
		file:       file,
		definition: definition,
		opts:       opts,
	}
}

// Load builds and loads the layered config, then binds it to the model.
// It may be called again to pick up changed sources.
func (s *productState[T]) Load(ctx context.Context) error {
	cfg, err := s.opts.Provider.Builder().
		WithPrefix(s.prefix).
		WithDefaultSources().
		WithSources(configuration.NewDefaultConfigSource(s.file, s.opts.FS, s.opts.Dir, s.opts.Logger)).
		WithSources(s.opts.Sources...).
		WithMergeSourceValues(true).
		Build()
	if err != nil {
		return err
	}
	if err := cfg.Load(ctx); err != nil {
		return err
	}

	obj, err := configuration.AsObject(cfg, s.definition, "")
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.config = cfg
	s.model = obj
	s.mu.Unlock()

	s.opts.Logger.Debug("product configuration loaded", "config", s.name)
	return nil
}

// IsLoaded reports whether Load has succeeded.
func (s *productState[T]) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Config returns the layered config behind the model.
func (s *productState[T]) Config() (*configuration.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return nil, s.unloaded()
	}
	return s.config, nil
}

// Name returns the schema name of the product config.
func (s *productState[T]) Name() string { return s.name }

// EnvPrefix returns the environment variable prefix of the product config.
func (s *productState[T]) EnvPrefix() string { return s.prefix }

// Descriptor returns the property table of the product config.
func (s *productState[T]) Descriptor() *mapper.Descriptor { return s.definition.Descriptor() }

// Object returns the loaded model as a plain document.
func (s *productState[T]) Object() (map[string]any, error) {
	m, err := s.get()
	if err != nil {
		return nil, err
	}
	return mapper.FromModel(m)
}

func (s *productState[T]) get() (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil, s.unloaded()
	}
	return s.model, nil
}

func (s *productState[T]) unloaded() error {
	return &configuration.UnloadedConfigError{Message: s.name + " is not loaded yet."}
}

// BlockNodeConfig is the view over the loaded block node config.
type BlockNodeConfig struct{ model *model.BlockNodeConfig }

func (c BlockNodeConfig) SchemaVersion() int   { return c.model.SchemaVersion }
func (c BlockNodeConfig) HelmChart() HelmChart { return NewHelmChart(c.model.HelmChart) }

// BlockNodeConfigRuntimeState owns the block node config.
type BlockNodeConfigRuntimeState struct {
	*productState[model.BlockNodeConfig]
}

// NewBlockNodeConfigRuntimeState creates the state; call Load before use.
func NewBlockNodeConfigRuntimeState(opts ProductOptions) *BlockNodeConfigRuntimeState {
	opts = opts.withDefaults()
	return &BlockNodeConfigRuntimeState{newProductState("BlockNodeConfig", BlockNodeEnvPrefix,
		resconfig.BlockNodeFile, migration.NewBlockNodeConfigDefinition(opts.Mapper), opts)}
}

// BlockNodeConfig returns the loaded config.
func (s *BlockNodeConfigRuntimeState) BlockNodeConfig() (BlockNodeConfig, error) {
	m, err := s.get()
	if err != nil {
		return BlockNodeConfig{}, err
	}
	return BlockNodeConfig{model: m}, nil
}

// MirrorNodeConfig is the view over the loaded mirror node config.
type MirrorNodeConfig struct{ model *model.MirrorNodeConfig }

func (c MirrorNodeConfig) SchemaVersion() int   { return c.model.SchemaVersion }
func (c MirrorNodeConfig) HelmChart() HelmChart { return NewHelmChart(c.model.HelmChart) }

// MirrorNodeConfigRuntimeState owns the mirror node config.
type MirrorNodeConfigRuntimeState struct {
	*productState[model.MirrorNodeConfig]
}

// NewMirrorNodeConfigRuntimeState creates the state; call Load before use.
func NewMirrorNodeConfigRuntimeState(opts ProductOptions) *MirrorNodeConfigRuntimeState {
	opts = opts.withDefaults()
	return &MirrorNodeConfigRuntimeState{newProductState("MirrorNodeConfig", MirrorNodeEnvPrefix,
		resconfig.MirrorNodeFile, migration.NewMirrorNodeConfigDefinition(opts.Mapper), opts)}
}

// MirrorNodeConfig returns the loaded config.
func (s *MirrorNodeConfigRuntimeState) MirrorNodeConfig() (MirrorNodeConfig, error) {
	m, err := s.get()
	if err != nil {
		return MirrorNodeConfig{}, err
	}
	return MirrorNodeConfig{model: m}, nil
}

// ExplorerConfig is the view over the loaded explorer config.
type ExplorerConfig struct{ model *model.ExplorerConfig }

func (c ExplorerConfig) SchemaVersion() int   { return c.model.SchemaVersion }
func (c ExplorerConfig) HelmChart() HelmChart { return NewHelmChart(c.model.HelmChart) }

// ExplorerConfigRuntimeState owns the explorer config.
type ExplorerConfigRuntimeState struct {
	*productState[model.ExplorerConfig]
}

// NewExplorerConfigRuntimeState creates the state; call Load before use.
func NewExplorerConfigRuntimeState(opts ProductOptions) *ExplorerConfigRuntimeState {
	opts = opts.withDefaults()
	return &ExplorerConfigRuntimeState{newProductState("ExplorerConfig", ExplorerEnvPrefix,
		resconfig.ExplorerFile, migration.NewExplorerConfigDefinition(opts.Mapper), opts)}
}

// ExplorerConfig returns the loaded config.
func (s *ExplorerConfigRuntimeState) ExplorerConfig() (ExplorerConfig, error) {
	m, err := s.get()
	if err != nil {
		return ExplorerConfig{}, err
	}
	return ExplorerConfig{model: m}, nil
}

// JSONRPCRelayConfig is the view over the loaded relay config.
type JSONRPCRelayConfig struct{ model *model.JSONRPCRelayConfig }

func (c JSONRPCRelayConfig) SchemaVersion() int   { return c.model.SchemaVersion }
func (c JSONRPCRelayConfig) HelmChart() HelmChart { return NewHelmChart(c.model.HelmChart) }

// JSONRPCRelayConfigRuntimeState owns the relay config.
type JSONRPCRelayConfigRuntimeState struct {
	*productState[model.JSONRPCRelayConfig]
}

// NewJSONRPCRelayConfigRuntimeState creates the state; call Load before use.
func NewJSONRPCRelayConfigRuntimeState(opts ProductOptions) *JSONRPCRelayConfigRuntimeState {
	opts = opts.withDefaults()
	return &JSONRPCRelayConfigRuntimeState{newProductState("JsonRpcRelayConfig", JSONRPCRelayEnvPrefix,
		resconfig.JSONRPCRelayFile, migration.NewJSONRPCRelayConfigDefinition(opts.Mapper), opts)}
}

// JSONRPCRelayConfig returns the loaded config.
func (s *JSONRPCRelayConfigRuntimeState) JSONRPCRelayConfig() (JSONRPCRelayConfig, error) {
	m, err := s.get()
	if err != nil {
		return JSONRPCRelayConfig{}, err
	}
	return JSONRPCRelayConfig{model: m}, nil
}

// SoloConfig is the view over the loaded platform chart config.
type SoloConfig struct{ model *model.SoloConfig }

func (c SoloConfig) SchemaVersion() int   { return c.model.SchemaVersion }
func (c SoloConfig) HelmChart() HelmChart { return NewHelmChart(c.model.HelmChart) }
func (c SoloConfig) IngressControllerHelmChart() HelmChart {
	return NewHelmChart(c.model.IngressControllerHelmChart)
}
func (c SoloConfig) ClusterSetupHelmChart() HelmChart {
	return NewHelmChart(c.model.ClusterSetupHelmChart)
}
func (c SoloConfig) CertManagerHelmChart() HelmChart {
	return NewHelmChart(c.model.CertManagerHelmChart)
}

// SoloConfigRuntimeState owns the platform chart config.
type SoloConfigRuntimeState struct {
	*productState[model.SoloConfig]
}

// NewSoloConfigRuntimeState creates the state; call Load before use.
func NewSoloConfigRuntimeState(opts ProductOptions) *SoloConfigRuntimeState {
	opts = opts.withDefaults()
	return &SoloConfigRuntimeState{newProductState("SoloConfig", SoloEnvPrefix,
		resconfig.SoloFile, migration.NewSoloConfigDefinition(opts.Mapper), opts)}
}

// SoloConfig returns the loaded config.
func (s *SoloConfigRuntimeState) SoloConfig() (SoloConfig, error) {
	m, err := s.get()
	if err != nil {
		return SoloConfig{}, err
	}
	return SoloConfig{model: m}, nil
}
