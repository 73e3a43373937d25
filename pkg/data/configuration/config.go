package configuration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/schema"
)

// Config merges a set of sources ordered by ordinal.
//
// With merging enabled, objects from every source are merged recursively
// and arrays and scalars from higher ordinals replace lower ones. Without
// merging, the highest-ordinal source defining anything under the
// requested prefix supplies the whole object.
type Config struct {
	prefix    string
	merge     bool
	formatter key.Formatter
	recorder  Recorder
	logger    *slog.Logger

	mu      sync.RWMutex
	sources []ConfigSource
}

// NewConfig creates a Config over sources.
func NewConfig(prefix string, merge bool, logger *slog.Logger, recorder Recorder, sources ...ConfigSource) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Config{
		prefix:    prefix,
		merge:     merge,
		formatter: key.NewConfigFormatter(),
		recorder:  recorderOrNoop(recorder),
		logger:    logger,
	}
	for _, s := range sources {
		if err := c.AddSource(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Prefix returns the environment prefix the config was built with.
func (c *Config) Prefix() string {
	return c.prefix
}

// MergeSourceValues reports whether object values are merged across
// sources.
func (c *Config) MergeSourceValues() bool {
	return c.merge
}

// AddSource adds s, keeping sources ordered by ordinal. Adding the same
// source twice, or a source with the name and ordinal of an existing one,
// is an error.
func (c *Config) AddSource(s ConfigSource) error {
	if s == nil {
		return fmt.Errorf("config source must not be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.sources {
		if existing == s || (existing.Name() == s.Name() && existing.Ordinal() == s.Ordinal()) {
			return &DuplicateConfigSourceError{Name: s.Name(), Ordinal: s.Ordinal()}
		}
	}

	c.sources = append(c.sources, s)
	sort.SliceStable(c.sources, func(i, j int) bool {
		return c.sources[i].Ordinal() < c.sources[j].Ordinal()
	})
	return nil
}

// Sources returns the sources in ascending ordinal order.
func (c *Config) Sources() []ConfigSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ConfigSource(nil), c.sources...)
}

// Load loads every source in ascending ordinal order. The first failure
// aborts the load.
func (c *Config) Load(ctx context.Context) error {
	return c.each(ctx, "load", func(s ConfigSource) error { return s.Load(ctx) })
}

// Refresh reloads every source.
func (c *Config) Refresh(ctx context.Context) error {
	return c.each(ctx, "refresh", func(s ConfigSource) error { return s.Refresh(ctx) })
}

func (c *Config) each(ctx context.Context, op string, fn func(ConfigSource) error) error {
	for _, s := range c.Sources() {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		err := fn(s)
		c.recorder.RecordSourceLoad(s.Name(), time.Since(start), err)
		if err != nil {
			c.logger.Error("config source failed", "source", s.Name(), "ordinal", s.Ordinal(), "operation", op, "error", err)
			return err
		}
		c.logger.Debug("config source ready", "source", s.Name(), "ordinal", s.Ordinal(), "operation", op)
	}
	return nil
}

// Properties returns the merged flat view of every source. For a key set
// by several sources the highest ordinal wins.
func (c *Config) Properties() map[string]string {
	out := map[string]string{}
	for _, s := range c.Sources() {
		for k, v := range s.Forest().Flat() {
			out[k] = v
		}
	}
	return out
}

// PropertyNames returns the sorted keys of Properties.
func (c *Config) PropertyNames() []string {
	return sortedKeys(c.Properties())
}

// AsString returns the value of k from the highest-ordinal source
// defining it.
func (c *Config) AsString(k string) (string, bool) {
	sources := c.Sources()
	for i := len(sources) - 1; i >= 0; i-- {
		if v, ok := sources[i].Forest().Value(k); ok {
			return v, true
		}
	}
	return "", false
}

// AsBool returns the value of k parsed as a boolean.
func (c *Config) AsBool(k string) (bool, error) {
	v, ok := c.AsString(k)
	if !ok {
		return false, fmt.Errorf("%s: %w", k, ErrPropertyNotFound)
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, &ConfigurationError{Key: k, Value: v, Message: "invalid bool", Err: err}
	}
	return b, nil
}

// AsInt returns the value of k parsed as an integer.
func (c *Config) AsInt(k string) (int, error) {
	v, ok := c.AsString(k)
	if !ok {
		return 0, fmt.Errorf("%s: %w", k, ErrPropertyNotFound)
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &ConfigurationError{Key: k, Value: v, Message: "invalid int", Err: err}
	}
	return i, nil
}

// AsFloat returns the value of k parsed as a number.
func (c *Config) AsFloat(k string) (float64, error) {
	v, ok := c.AsString(k)
	if !ok {
		return 0, fmt.Errorf("%s: %w", k, ErrPropertyNotFound)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, &ConfigurationError{Key: k, Value: v, Message: "invalid float", Err: err}
	}
	return f, nil
}

// Has reports whether any source defines k or a key below it.
func (c *Config) Has(k string) bool {
	_, ok := c.forestFor(k)
	return ok
}

// forestFor returns the index of the highest-ordinal source defining k.
func (c *Config) forestFor(k string) (*key.Forest, bool) {
	sources := c.Sources()
	for i := len(sources) - 1; i >= 0; i-- {
		if f := sources[i].Forest(); f != nil && f.Has(k) {
			return f, true
		}
	}
	return nil, false
}

// AsStringSlice returns the array at k from the highest-ordinal source
// defining it. A single value holding a JSON array is accepted as well.
func (c *Config) AsStringSlice(k string) ([]string, bool) {
	forest, ok := c.forestFor(k)
	if !ok {
		return nil, false
	}

	if n := forest.ArrayLength(k); n > 0 {
		out := make([]string, 0, n)
		for i := 0; i < n; i++ {
			v, _ := forest.Value(k + key.ConfigSeparator + strconv.Itoa(i))
			out = append(out, v)
		}
		return out, true
	}

	v, ok := forest.Value(k)
	if !ok {
		return nil, false
	}
	d := mapper.NewDescriptor("values", mapper.ScalarArray("values", mapper.TypeString))
	obj := map[string]any{}
	if err := mapper.New(c.formatter).ApplyPropertyValue(d, obj, "values", v); err != nil {
		return []string{v}, true
	}
	values, _ := obj["values"].([]any)
	out := make([]string, 0, len(values))
	for _, e := range values {
		s, _ := e.(string)
		out = append(out, s)
	}
	return out, true
}

// AsPlainObject materializes the subtree at prefix from every source and
// merges the results.
func (c *Config) AsPlainObject(prefix string, d *mapper.Descriptor) (map[string]any, error) {
	sources := c.Sources()

	var out map[string]any
	for _, s := range sources {
		obj, err := s.Materialize(prefix, d)
		if err != nil {
			return nil, err
		}
		if len(obj) == 0 {
			continue
		}
		if c.merge {
			out = mergePlain(out, obj)
		} else {
			out = obj
		}
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// AsObject materializes the subtree at prefix and transforms it with def,
// migrating it to the current schema version.
func AsObject[T any](c *Config, def *schema.Definition[T], prefix string) (*T, error) {
	obj, err := c.AsPlainObject(prefix, def.Descriptor())
	if err != nil {
		return nil, err
	}
	return def.Transform(obj)
}

// AsObjectSlice materializes the array of objects at prefix.
func AsObjectSlice[T any](c *Config, elem *mapper.Descriptor, prefix string) ([]T, error) {
	segments, err := c.formatter.Parse(prefix)
	if err != nil {
		return nil, err
	}
	parent := c.formatter.Format(segments[:len(segments)-1])
	name := segments[len(segments)-1]

	wrapper := mapper.NewDescriptor(elem.Name+"List", mapper.ObjectArray(name, elem))
	obj, err := c.AsPlainObject(parent, wrapper)
	if err != nil {
		return nil, err
	}

	var out struct {
		Items []T `yaml:"items"`
	}
	if err := mapper.ToModel(map[string]any{"items": obj[name]}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
