package configuration

import (
	"log/slog"
)

// Builder assembles a Config.
type Builder struct {
	provider       *Provider
	prefix         string
	defaultSources bool
	merge          bool
	sources        []ConfigSource
}

// WithPrefix sets the environment variable prefix, such as SOLO_BLOCK_NODE.
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithDefaultSources adds the environment source for the prefix.
func (b *Builder) WithDefaultSources() *Builder {
	b.defaultSources = true
	return b
}

// WithSources adds sources.
func (b *Builder) WithSources(sources ...ConfigSource) *Builder {
	b.sources = append(b.sources, sources...)
	return b
}

// WithMergeSourceValues enables merging of object values across sources.
func (b *Builder) WithMergeSourceValues(merge bool) *Builder {
	b.merge = merge
	return b
}

// Build creates the Config. Sources are not loaded.
func (b *Builder) Build() (*Config, error) {
	logger := slog.Default()
	var recorder Recorder
	if b.provider != nil {
		logger = b.provider.logger
		recorder = b.provider.recorder
	}

	sources := append([]ConfigSource(nil), b.sources...)
	if b.defaultSources {
		sources = append(sources, b.provider.environmentSource(b.prefix, logger))
	}
	return NewConfig(b.prefix, b.merge, logger, recorder, sources...)
}
