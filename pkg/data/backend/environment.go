package backend

import (
	"context"
	"os"
	"sort"
	"strings"

	"hiero-solo/pkg/data/key"
)

// EnvironmentStorageBackend exposes process environment variables below a
// prefix. It is read-only and flat: only List and ReadBytes are supported.
//
// Given prefix SOLO and the variable SOLO_DEPLOYMENTS_0_CLUSTERS_0, List
// returns DEPLOYMENTS_0_CLUSTERS_0.
type EnvironmentStorageBackend struct {
	prefix  key.Prefix
	environ func() []string
}

// NewEnvironmentStorageBackend creates a backend over os.Environ.
func NewEnvironmentStorageBackend(prefix string) *EnvironmentStorageBackend {
	return NewEnvironmentStorageBackendFrom(prefix, os.Environ)
}

// NewEnvironmentStorageBackendFrom creates a backend over a custom
// environment provider returning KEY=VALUE pairs.
func NewEnvironmentStorageBackendFrom(prefix string, environ func() []string) *EnvironmentStorageBackend {
	return &EnvironmentStorageBackend{
		prefix:  key.NewPrefix(prefix, key.NewEnvironmentFormatter()),
		environ: environ,
	}
}

// Prefix returns the variable prefix this backend filters on.
func (b *EnvironmentStorageBackend) Prefix() string {
	return b.prefix.String()
}

// IsSupported implements StorageBackend.
func (b *EnvironmentStorageBackend) IsSupported(op Operation) bool {
	return op == OperationList || op == OperationReadBytes
}

// List implements StorageBackend.
func (b *EnvironmentStorageBackend) List(_ context.Context) ([]string, error) {
	var keys []string
	for name := range b.variables() {
		if b.prefix.IsEmpty() || b.prefix.Matches(name) {
			keys = append(keys, b.prefix.Strip(name))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ReadBytes implements StorageBackend.
func (b *EnvironmentStorageBackend) ReadBytes(_ context.Context, k string) ([]byte, error) {
	if strings.TrimSpace(k) == "" {
		return nil, &IllegalArgumentError{Message: "key must not be empty"}
	}

	value, ok := b.variables()[b.prefix.Add(k)]
	if !ok || value == "" {
		return nil, notFound(OperationReadBytes, k)
	}
	return []byte(value), nil
}

// WriteBytes implements StorageBackend.
func (b *EnvironmentStorageBackend) WriteBytes(_ context.Context, _ string, _ []byte) error {
	return &UnsupportedStorageOperationError{Operation: OperationWriteBytes, Backend: "environment"}
}

// Delete implements StorageBackend.
func (b *EnvironmentStorageBackend) Delete(_ context.Context, _ string) error {
	return &UnsupportedStorageOperationError{Operation: OperationDelete, Backend: "environment"}
}

func (b *EnvironmentStorageBackend) variables() map[string]string {
	env := b.environ()
	vars := make(map[string]string, len(env))
	for _, kv := range env {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}
