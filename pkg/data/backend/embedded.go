package backend

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// EmbeddedStorageBackend serves read-only documents from an fs.FS, typically
// an embed.FS holding bundled defaults.
type EmbeddedStorageBackend struct {
	fsys fs.FS
	dir  string
}

// NewEmbeddedStorageBackend creates a backend over the files in dir of fsys.
func NewEmbeddedStorageBackend(fsys fs.FS, dir string) *EmbeddedStorageBackend {
	return &EmbeddedStorageBackend{fsys: fsys, dir: dir}
}

// IsSupported implements StorageBackend.
func (b *EmbeddedStorageBackend) IsSupported(op Operation) bool {
	return op == OperationList || op == OperationReadBytes || op == OperationReadObject
}

// List implements StorageBackend.
func (b *EmbeddedStorageBackend) List(_ context.Context) ([]string, error) {
	entries, err := fs.ReadDir(b.fsys, b.root())
	if err != nil {
		return nil, &StorageBackendError{Operation: OperationList, Key: b.root(), Err: err}
	}

	var keys []string
	for _, e := range entries {
		if !e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ReadBytes implements StorageBackend.
func (b *EmbeddedStorageBackend) ReadBytes(_ context.Context, k string) ([]byte, error) {
	if strings.TrimSpace(k) == "" {
		return nil, &IllegalArgumentError{Message: "key must not be empty"}
	}

	data, err := fs.ReadFile(b.fsys, path.Join(b.root(), k))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(OperationReadBytes, k)
		}
		return nil, &StorageBackendError{Operation: OperationReadBytes, Key: k, Err: err}
	}
	return data, nil
}

// WriteBytes implements StorageBackend.
func (b *EmbeddedStorageBackend) WriteBytes(_ context.Context, _ string, _ []byte) error {
	return &UnsupportedStorageOperationError{Operation: OperationWriteBytes, Backend: "embedded"}
}

// Delete implements StorageBackend.
func (b *EmbeddedStorageBackend) Delete(_ context.Context, _ string) error {
	return &UnsupportedStorageOperationError{Operation: OperationDelete, Backend: "embedded"}
}

// ReadObject implements ObjectStorageBackend.
func (b *EmbeddedStorageBackend) ReadObject(ctx context.Context, k string) (map[string]any, error) {
	data, err := b.ReadBytes(ctx, k)
	if err != nil {
		return nil, err
	}
	return decodeObject(k, data)
}

// WriteObject implements ObjectStorageBackend.
func (b *EmbeddedStorageBackend) WriteObject(_ context.Context, _ string, _ map[string]any) error {
	return &UnsupportedStorageOperationError{Operation: OperationWriteObject, Backend: "embedded"}
}

func (b *EmbeddedStorageBackend) root() string {
	if b.dir == "" {
		return "."
	}
	return b.dir
}
