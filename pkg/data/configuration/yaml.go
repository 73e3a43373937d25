package configuration

import (
	"context"
	"io/fs"
	"log/slog"
	"sync"

	"hiero-solo/pkg/data/backend"
	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/plain"
)

// YamlConfigSource is an untyped source reading one YAML document from an
// object backend.
type YamlConfigSource struct {
	name     string
	ordinal  int
	prefix   string
	key      string
	backend  backend.ObjectStorageBackend
	mapper   *mapper.ObjectMapper
	optional bool
	logger   *slog.Logger

	mu     sync.RWMutex
	obj    map[string]any
	forest *key.Forest
}

// YamlConfigSourceOption configures a YamlConfigSource.
type YamlConfigSourceOption func(*YamlConfigSource)

// WithSourcePrefix sets the key prefix reported by the source.
func WithSourcePrefix(prefix string) YamlConfigSourceOption {
	return func(s *YamlConfigSource) { s.prefix = prefix }
}

// Optional makes a missing document load as empty.
func Optional() YamlConfigSourceOption {
	return func(s *YamlConfigSource) { s.optional = true }
}

// NewYamlConfigSource creates a source reading k from b.
func NewYamlConfigSource(name string, ordinal int, b backend.ObjectStorageBackend, k string, logger *slog.Logger, opts ...YamlConfigSourceOption) *YamlConfigSource {
	if logger == nil {
		logger = slog.Default()
	}
	s := &YamlConfigSource{
		name:    name,
		ordinal: ordinal,
		key:     k,
		backend: b,
		mapper:  mapper.New(key.NewConfigFormatter()),
		logger:  logger,
		obj:     map[string]any{},
	}
	s.forest = emptyForest(s.mapper.Formatter())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefaultConfigSource creates the lowest-ordinal source over a bundled
// default file, such as mirror-node-config.yaml in resources/config.
func NewDefaultConfigSource(fileName string, fsys fs.FS, dir string, logger *slog.Logger) *YamlConfigSource {
	return NewYamlConfigSource(fileName, DefaultOrdinal, backend.NewEmbeddedStorageBackend(fsys, dir), fileName, logger)
}

// NewLocalYamlConfigSource creates a source over a YAML file in basePath.
func NewLocalYamlConfigSource(basePath, fileName string, logger *slog.Logger) *YamlConfigSource {
	return NewYamlConfigSource(fileName, LocalOrdinal, backend.NewYamlFileStorageBackend(basePath), fileName, logger, Optional())
}

// Name implements ConfigSource.
func (s *YamlConfigSource) Name() string {
	return s.name
}

// Ordinal implements ConfigSource.
func (s *YamlConfigSource) Ordinal() int {
	return s.ordinal
}

// Prefix implements ConfigSource.
func (s *YamlConfigSource) Prefix() string {
	return s.prefix
}

// Load implements ConfigSource.
func (s *YamlConfigSource) Load(ctx context.Context) error {
	obj, err := s.backend.ReadObject(ctx, s.key)
	if err != nil {
		if !s.optional || !backend.IsNotFound(err) {
			return &ConfigurationError{Key: s.key, Message: "failed to load " + s.name, Err: err}
		}
		obj = map[string]any{}
	}

	forest, err := indexPlain(s.mapper.Formatter(), obj)
	if err != nil {
		return &ConfigurationError{Key: s.key, Message: "failed to index " + s.name, Err: err}
	}

	s.mu.Lock()
	s.obj = obj
	s.forest = forest
	s.mu.Unlock()

	s.logger.Debug("yaml source loaded", "source", s.name, "ordinal", s.ordinal, "key", s.key)
	return nil
}

// Refresh implements ConfigSource.
func (s *YamlConfigSource) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// Object returns a copy of the loaded document.
func (s *YamlConfigSource) Object() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone, err := plain.Clone(s.obj)
	if err != nil {
		return map[string]any{}
	}
	return clone
}

// Forest implements ConfigSource.
func (s *YamlConfigSource) Forest() *key.Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest
}

// Properties implements ConfigSource.
func (s *YamlConfigSource) Properties() map[string]string {
	return s.Forest().Flat()
}

// Materialize implements ConfigSource.
func (s *YamlConfigSource) Materialize(prefix string, d *mapper.Descriptor) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return materializeObject(s.mapper, s.obj, prefix, d)
}

// MapConfigSource is an in-memory source, used for explicit overrides such
// as command line flags.
type MapConfigSource struct {
	name    string
	ordinal int
	mapper  *mapper.ObjectMapper

	mu     sync.RWMutex
	obj    map[string]any
	forest *key.Forest
}

// NewMapConfigSource creates an in-memory source holding obj. Entries
// whose keys cannot be indexed, such as empty map keys, are left out of
// Properties and Forest.
func NewMapConfigSource(name string, ordinal int, obj map[string]any) *MapConfigSource {
	if obj == nil {
		obj = map[string]any{}
	}
	s := &MapConfigSource{
		name:    name,
		ordinal: ordinal,
		mapper:  mapper.New(key.NewConfigFormatter()),
		obj:     plain.Normalize(obj).(map[string]any),
	}
	forest, err := indexPlain(s.mapper.Formatter(), s.obj)
	if err != nil {
		forest = emptyForest(s.mapper.Formatter())
	}
	s.forest = forest
	return s
}

// Name implements ConfigSource.
func (s *MapConfigSource) Name() string {
	return s.name
}

// Ordinal implements ConfigSource.
func (s *MapConfigSource) Ordinal() int {
	return s.ordinal
}

// Prefix implements ConfigSource.
func (s *MapConfigSource) Prefix() string {
	return ""
}

// Load implements ConfigSource.
func (s *MapConfigSource) Load(context.Context) error {
	return nil
}

// Refresh implements ConfigSource.
func (s *MapConfigSource) Refresh(context.Context) error {
	return nil
}

// Set replaces the value at the dotted key k.
func (s *MapConfigSource) Set(k string, value any) error {
	segments, err := s.mapper.Formatter().Parse(k)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.obj
	for _, seg := range segments[:len(segments)-1] {
		current = plain.EnsureMap(current, seg)
	}
	current[segments[len(segments)-1]] = plain.Normalize(value)

	forest, err := indexPlain(s.mapper.Formatter(), s.obj)
	if err != nil {
		return err
	}
	s.forest = forest
	return nil
}

// Forest implements ConfigSource.
func (s *MapConfigSource) Forest() *key.Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest
}

// Properties implements ConfigSource.
func (s *MapConfigSource) Properties() map[string]string {
	return s.Forest().Flat()
}

// Materialize implements ConfigSource.
func (s *MapConfigSource) Materialize(prefix string, d *mapper.Descriptor) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return materializeObject(s.mapper, s.obj, prefix, d)
}
