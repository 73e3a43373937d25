// Package configuration layers configuration sources into typed objects.
//
// A ConfigSource loads one medium (process environment, bundled defaults,
// a local YAML file, a Kubernetes ConfigMap) and exposes it as flat
// dotted properties and as plain documents shaped by a descriptor. A Config
// orders its sources by ordinal and merges them so that the source with the
// highest ordinal wins.
package configuration

import (
	"context"
	"time"

	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
)

// Well-known source ordinals. Higher ordinals take precedence.
const (
	DefaultOrdinal     = 0
	EnvironmentOrdinal = 100
	LocalOrdinal       = 200
	RemoteOrdinal      = 300
	OverrideOrdinal    = 400
)

// ConfigSource is one layer of configuration.
type ConfigSource interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Ordinal orders sources. Higher ordinals override lower ones.
	Ordinal() int

	// Prefix is the physical key prefix of the source, if any.
	Prefix() string

	// Load reads the source from its backend.
	Load(ctx context.Context) error

	// Refresh reloads the source from the current backend contents.
	Refresh(ctx context.Context) error

	// Properties returns the loaded contents as flat dotted keys.
	Properties() map[string]string

	// Forest returns the key index built by the last Load or Refresh.
	Forest() *key.Forest

	// Materialize returns the subtree at prefix conformed to d. A source
	// with nothing under prefix returns an empty document.
	Materialize(prefix string, d *mapper.Descriptor) (map[string]any, error)
}

// PersistentConfigSource is a source that can write its contents back.
type PersistentConfigSource interface {
	ConfigSource

	// Persist writes the source's contents to its backend.
	Persist(ctx context.Context) error
}

// Recorder receives engine measurements. The metrics package provides the
// Prometheus implementation.
type Recorder interface {
	RecordSourceLoad(source string, duration time.Duration, err error)
	RecordPersist(source string)
	RecordMigration(schema string, from, to int)
}

type noopRecorder struct{}

func (noopRecorder) RecordSourceLoad(string, time.Duration, error) {}
func (noopRecorder) RecordPersist(string)                          {}
func (noopRecorder) RecordMigration(string, int, int)              {}

func recorderOrNoop(r Recorder) Recorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
