package configuration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tiendc/go-deepcopy"

	"hiero-solo/pkg/data/backend"
	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/schema"
)

// ModelConfigSource is a typed, writable source. Loading migrates the
// stored document to the current schema version and binds it to T.
// The model is owned by the source; callers mutate it through ModelData
// and write it back with Persist.
type ModelConfigSource[T any] struct {
	name       string
	ordinal    int
	prefix     string
	key        string
	backend    backend.ObjectStorageBackend
	definition *schema.Definition[T]
	mapper     *mapper.ObjectMapper
	recorder   Recorder
	logger     *slog.Logger

	mu       sync.RWMutex
	model    *T
	migrated bool
	forest   *key.Forest
}

// ModelConfigSourceConfig holds the parameters of a ModelConfigSource.
type ModelConfigSourceConfig[T any] struct {
	Name       string
	Ordinal    int
	Prefix     string
	Key        string
	Backend    backend.ObjectStorageBackend
	Definition *schema.Definition[T]
	Recorder   Recorder
	Logger     *slog.Logger
}

// NewModelConfigSource creates a typed source.
func NewModelConfigSource[T any](cfg ModelConfigSourceConfig[T]) *ModelConfigSource[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	formatter := key.NewConfigFormatter()
	return &ModelConfigSource[T]{
		name:       cfg.Name,
		ordinal:    cfg.Ordinal,
		prefix:     cfg.Prefix,
		key:        cfg.Key,
		backend:    cfg.Backend,
		definition: cfg.Definition,
		mapper:     mapper.New(formatter),
		recorder:   recorderOrNoop(cfg.Recorder),
		logger:     logger,
		forest:     emptyForest(formatter),
	}
}

// Name implements ConfigSource.
func (s *ModelConfigSource[T]) Name() string {
	return s.name
}

// Ordinal implements ConfigSource.
func (s *ModelConfigSource[T]) Ordinal() int {
	return s.ordinal
}

// Prefix implements ConfigSource.
func (s *ModelConfigSource[T]) Prefix() string {
	return s.prefix
}

// Key returns the backend key holding the document.
func (s *ModelConfigSource[T]) Key() string {
	return s.key
}

// Backend returns the backend the source reads from and writes to.
func (s *ModelConfigSource[T]) Backend() backend.ObjectStorageBackend {
	return s.backend
}

// Load implements ConfigSource. A missing document is reported as a
// ConfigurationError wrapping backend.ErrKeyNotFound.
func (s *ModelConfigSource[T]) Load(ctx context.Context) error {
	raw, err := s.backend.ReadObject(ctx, s.key)
	if err != nil {
		return &ConfigurationError{Key: s.key, Message: "failed to load " + s.name, Err: err}
	}

	from, err := schema.DocumentVersion(raw)
	if err != nil {
		return &ConfigurationError{Key: schema.VersionKey, Value: raw[schema.VersionKey], Message: "invalid schema version", Err: err}
	}

	model, err := s.definition.Transform(raw)
	if err != nil {
		return err
	}

	to := s.definition.CurrentVersion()
	if from != to {
		s.recorder.RecordMigration(s.definition.Name(), int(from), int(to))
		s.logger.Info("configuration migrated",
			"source", s.name,
			"schema", s.definition.Name(),
			"from_version", int(from),
			"to_version", int(to))
	}

	forest, err := s.index(model)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.model = model
	s.migrated = from != to
	s.forest = forest
	s.mu.Unlock()
	return nil
}

// Refresh implements ConfigSource.
func (s *ModelConfigSource[T]) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// IsLoaded reports whether a model has been loaded or set.
func (s *ModelConfigSource[T]) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Migrated reports whether the last Load upgraded the stored document.
func (s *ModelConfigSource[T]) Migrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.migrated
}

// ModelData returns the loaded model, or nil before Load.
func (s *ModelConfigSource[T]) ModelData() *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// SetModelData replaces the model, for documents created from scratch.
func (s *ModelConfigSource[T]) SetModelData(model *T) {
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	s.reindex()
}

// Update applies fn to the model and then runs commit, Persist when
// commit is nil. When fn or commit fails the model is restored in place
// to its contents before fn, so views over it see the old values and a
// later Persist does not write the aborted changes.
func (s *ModelConfigSource[T]) Update(ctx context.Context, fn func(*T) error, commit func(context.Context) error) error {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()

	if model == nil {
		return &UnloadedConfigError{Message: s.name + " is not loaded yet."}
	}
	if commit == nil {
		commit = s.Persist
	}

	var snapshot T
	if err := deepcopy.Copy(&snapshot, *model); err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", s.name, err)
	}

	restore := func() {
		s.mu.Lock()
		*model = snapshot
		s.mu.Unlock()
	}

	if err := fn(model); err != nil {
		restore()
		return err
	}
	if err := commit(ctx); err != nil {
		restore()
		s.logger.Warn("configuration update rolled back", "source", s.name, "error", err)
		return err
	}

	s.reindex()
	return nil
}

// Persist writes the model back to the backend.
func (s *ModelConfigSource[T]) Persist(ctx context.Context) error {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()

	if model == nil {
		return &UnloadedConfigError{Message: s.name + " is not loaded yet."}
	}

	obj, err := s.definition.ToObject(model)
	if err != nil {
		return err
	}
	if err := s.backend.WriteObject(ctx, s.key, obj); err != nil {
		return err
	}

	s.recorder.RecordPersist(s.name)
	s.logger.Debug("configuration persisted", "source", s.name, "key", s.key)
	s.reindex()
	return nil
}

// Forest implements ConfigSource. The index reflects the model as of the
// last Load, SetModelData, Update or Persist.
func (s *ModelConfigSource[T]) Forest() *key.Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest
}

// Properties implements ConfigSource.
func (s *ModelConfigSource[T]) Properties() map[string]string {
	return s.Forest().Flat()
}

// Materialize implements ConfigSource.
func (s *ModelConfigSource[T]) Materialize(prefix string, d *mapper.Descriptor) (map[string]any, error) {
	obj, err := s.object()
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return map[string]any{}, nil
	}
	return materializeObject(s.mapper, obj, prefix, d)
}

func (s *ModelConfigSource[T]) index(model *T) (*key.Forest, error) {
	obj, err := s.definition.ToObject(model)
	if err != nil {
		return nil, err
	}
	forest, err := indexPlain(s.mapper.Formatter(), obj)
	if err != nil {
		return nil, &ConfigurationError{Key: s.key, Message: "failed to index " + s.name, Err: err}
	}
	return forest, nil
}

func (s *ModelConfigSource[T]) reindex() {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()

	forest := emptyForest(s.mapper.Formatter())
	if model != nil {
		f, err := s.index(model)
		if err != nil {
			s.logger.Warn("failed to index configuration", "source", s.name, "error", err)
		} else {
			forest = f
		}
	}

	s.mu.Lock()
	s.forest = forest
	s.mu.Unlock()
}

func (s *ModelConfigSource[T]) object() (map[string]any, error) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()

	if model == nil {
		return nil, nil
	}
	return s.definition.ToObject(model)
}
