package backend

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// FileStorageBackend stores each key as a file inside a base directory.
type FileStorageBackend struct {
	basePath string
}

// NewFileStorageBackend creates a backend rooted at basePath.
func NewFileStorageBackend(basePath string) *FileStorageBackend {
	return &FileStorageBackend{basePath: basePath}
}

// BasePath returns the directory holding the files.
func (b *FileStorageBackend) BasePath() string {
	return b.basePath
}

// IsSupported implements StorageBackend.
func (b *FileStorageBackend) IsSupported(op Operation) bool {
	switch op {
	case OperationList, OperationReadBytes, OperationWriteBytes, OperationDelete:
		return true
	default:
		return false
	}
}

// List implements StorageBackend.
func (b *FileStorageBackend) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(b.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageBackendError{Operation: OperationList, Key: b.basePath, Err: err}
	}

	var keys []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ReadBytes implements StorageBackend.
func (b *FileStorageBackend) ReadBytes(_ context.Context, k string) ([]byte, error) {
	path, err := b.path(k)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(OperationReadBytes, k)
		}
		return nil, &StorageBackendError{Operation: OperationReadBytes, Key: k, Err: err}
	}
	return data, nil
}

// WriteBytes implements StorageBackend. Data is written to a temporary file
// and renamed into place.
func (b *FileStorageBackend) WriteBytes(_ context.Context, k string, data []byte) error {
	path, err := b.path(k)
	if err != nil {
		return err
	}
	if data == nil {
		return &IllegalArgumentError{Message: "data must not be nil"}
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return &StorageBackendError{Operation: OperationWriteBytes, Key: k, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &StorageBackendError{Operation: OperationWriteBytes, Key: k, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &StorageBackendError{Operation: OperationWriteBytes, Key: k, Err: err}
	}
	if err := tmp.Chmod(filePermissions); err != nil {
		tmp.Close()
		return &StorageBackendError{Operation: OperationWriteBytes, Key: k, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageBackendError{Operation: OperationWriteBytes, Key: k, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &StorageBackendError{Operation: OperationWriteBytes, Key: k, Err: err}
	}
	return nil
}

// Delete implements StorageBackend.
func (b *FileStorageBackend) Delete(_ context.Context, k string) error {
	path, err := b.path(k)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(OperationDelete, k)
		}
		return &StorageBackendError{Operation: OperationDelete, Key: k, Err: err}
	}
	return nil
}

func (b *FileStorageBackend) path(k string) (string, error) {
	if strings.TrimSpace(k) == "" {
		return "", &IllegalArgumentError{Message: "key must not be empty"}
	}
	if filepath.IsAbs(k) || strings.Contains(filepath.ToSlash(k), "../") || k == ".." {
		return "", &IllegalArgumentError{Message: "key must be relative to the base path: " + k}
	}
	return filepath.Join(b.basePath, filepath.Clean(k)), nil
}

// YamlFileStorageBackend is a FileStorageBackend whose files hold YAML
// documents.
type YamlFileStorageBackend struct {
	*FileStorageBackend
}

// NewYamlFileStorageBackend creates a YAML file backend rooted at basePath.
func NewYamlFileStorageBackend(basePath string) *YamlFileStorageBackend {
	return &YamlFileStorageBackend{FileStorageBackend: NewFileStorageBackend(basePath)}
}

// IsSupported implements StorageBackend.
func (b *YamlFileStorageBackend) IsSupported(op Operation) bool {
	return op == OperationReadObject || op == OperationWriteObject || b.FileStorageBackend.IsSupported(op)
}

// ReadObject implements ObjectStorageBackend.
func (b *YamlFileStorageBackend) ReadObject(ctx context.Context, k string) (map[string]any, error) {
	data, err := b.ReadBytes(ctx, k)
	if err != nil {
		return nil, err
	}
	return decodeObject(k, data)
}

// WriteObject implements ObjectStorageBackend.
func (b *YamlFileStorageBackend) WriteObject(ctx context.Context, k string, obj map[string]any) error {
	data, err := encodeObject(k, obj)
	if err != nil {
		return err
	}
	return b.WriteBytes(ctx, k, data)
}
