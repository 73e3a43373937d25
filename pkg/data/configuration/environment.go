package configuration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"hiero-solo/pkg/data/backend"
	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
)

// EnvironmentConfigSource reads variables below a prefix, such as
// SOLO_MIRROR_NODE_HELM-CHART_DIRECTORY, and exposes them as dotted keys
// (helmChart.directory). Values stay strings until materialized against a
// descriptor. Materialize resolves the raw variable names against the
// descriptor, so map keys such as CLUSTER-REFS_e2e-cluster-1 keep their
// case and dashes.
type EnvironmentConfigSource struct {
	backend   *backend.EnvironmentStorageBackend
	env       key.Formatter
	envMapper *mapper.ObjectMapper
	formatter key.Formatter
	ordinal   int
	logger    *slog.Logger

	mu     sync.RWMutex
	vars   map[string]string
	forest *key.Forest
}

// NewEnvironmentConfigSource creates a source over the process environment.
func NewEnvironmentConfigSource(prefix string, logger *slog.Logger) *EnvironmentConfigSource {
	return NewEnvironmentConfigSourceFrom(backend.NewEnvironmentStorageBackend(prefix), logger)
}

// NewEnvironmentConfigSourceFrom creates a source over b.
func NewEnvironmentConfigSourceFrom(b *backend.EnvironmentStorageBackend, logger *slog.Logger) *EnvironmentConfigSource {
	if logger == nil {
		logger = slog.Default()
	}
	env := key.NewEnvironmentFormatter()
	formatter := key.NewConfigFormatter()
	return &EnvironmentConfigSource{
		backend:   b,
		env:       env,
		envMapper: mapper.New(env),
		formatter: formatter,
		ordinal:   EnvironmentOrdinal,
		logger:    logger,
		vars:      map[string]string{},
		forest:    emptyForest(formatter),
	}
}

// Name implements ConfigSource.
func (s *EnvironmentConfigSource) Name() string {
	return "EnvironmentConfigSource"
}

// Ordinal implements ConfigSource.
func (s *EnvironmentConfigSource) Ordinal() int {
	return s.ordinal
}

// Prefix implements ConfigSource.
func (s *EnvironmentConfigSource) Prefix() string {
	return s.backend.Prefix()
}

// Load implements ConfigSource.
func (s *EnvironmentConfigSource) Load(ctx context.Context) error {
	names, err := s.backend.List(ctx)
	if err != nil {
		return err
	}

	vars := make(map[string]string, len(names))
	props := make(map[string]string, len(names))
	for _, name := range names {
		segments, err := s.env.Parse(name)
		if err != nil {
			s.logger.Debug("skipping environment variable", "source", s.Name(), "key", name, "error", err)
			continue
		}

		value, err := s.backend.ReadBytes(ctx, name)
		if err != nil {
			if backend.IsNotFound(err) {
				continue
			}
			return &ConfigurationError{Key: s.backend.Prefix() + key.EnvironmentSeparator + name, Message: "failed to read variable", Err: err}
		}
		vars[name] = string(value)
		props[s.formatter.Join(segments)] = string(value)
	}

	forest, err := key.NewForest(props, s.formatter)
	if err != nil {
		return &ConfigurationError{Key: s.Prefix(), Message: "failed to index environment", Err: err}
	}

	s.mu.Lock()
	s.vars = vars
	s.forest = forest
	s.mu.Unlock()

	s.logger.Debug("environment loaded", "source", s.Name(), "prefix", s.Prefix(), "keys", len(vars))
	return nil
}

// Refresh implements ConfigSource.
func (s *EnvironmentConfigSource) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// Forest implements ConfigSource.
func (s *EnvironmentConfigSource) Forest() *key.Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest
}

// Properties implements ConfigSource.
func (s *EnvironmentConfigSource) Properties() map[string]string {
	return s.Forest().Flat()
}

// Materialize implements ConfigSource. Keys d does not declare are
// skipped; values that do not match their declared type are an error.
func (s *EnvironmentConfigSource) Materialize(prefix string, d *mapper.Descriptor) (map[string]any, error) {
	p, err := s.envPrefix(prefix)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	vars := s.vars
	s.mu.RUnlock()

	obj := map[string]any{}
	for _, name := range sortedKeys(vars) {
		if !p.Matches(name) {
			continue
		}
		rel := p.Strip(name)
		if !s.envMapper.KnownKey(d, rel) {
			s.logger.Debug("ignoring unknown environment key", "source", s.Name(), "key", name, "descriptor", d.Name)
			continue
		}
		if err := s.envMapper.ApplyPropertyValue(d, obj, rel, vars[name]); err != nil {
			return nil, fmt.Errorf("environment variable %s: %w", s.physicalKey(name), err)
		}
	}
	return obj, nil
}

// envPrefix converts a dotted property prefix into a variable name prefix.
func (s *EnvironmentConfigSource) envPrefix(prefix string) (key.Prefix, error) {
	if prefix == "" {
		return key.NewPrefix("", s.env), nil
	}
	segments, err := s.formatter.Split(prefix)
	if err != nil {
		return key.Prefix{}, err
	}
	return key.NewPrefix(s.env.Format(segments), s.env), nil
}

func (s *EnvironmentConfigSource) physicalKey(name string) string {
	if prefix := s.backend.Prefix(); prefix != "" {
		return strings.Join([]string{prefix, name}, key.EnvironmentSeparator)
	}
	return name
}
