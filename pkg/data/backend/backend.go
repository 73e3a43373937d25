// Package backend provides byte-level storage over the media the
// configuration engine reads from and writes to.
//
// Backends know nothing about schemas. Each declares the operations it
// supports and returns UnsupportedStorageOperationError for the rest.
package backend

import (
	"context"
)

// Operation identifies a storage capability.
type Operation int

const (
	OperationList Operation = iota
	OperationReadBytes
	OperationWriteBytes
	OperationDelete
	OperationReadObject
	OperationWriteObject
)

func (o Operation) String() string {
	switch o {
	case OperationList:
		return "list"
	case OperationReadBytes:
		return "readBytes"
	case OperationWriteBytes:
		return "writeBytes"
	case OperationDelete:
		return "delete"
	case OperationReadObject:
		return "readObject"
	case OperationWriteObject:
		return "writeObject"
	default:
		return "unknown"
	}
}

// StorageBackend is raw byte-level access to a storage medium.
type StorageBackend interface {
	// IsSupported reports whether the backend implements op.
	IsSupported(op Operation) bool

	// List returns the keys currently stored.
	List(ctx context.Context) ([]string, error)

	// ReadBytes returns the data stored under key.
	ReadBytes(ctx context.Context, key string) ([]byte, error)

	// WriteBytes stores data under key, replacing any previous value.
	WriteBytes(ctx context.Context, key string, data []byte) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error
}

// ObjectStorageBackend is a StorageBackend whose values are structured
// documents.
type ObjectStorageBackend interface {
	StorageBackend

	// ReadObject decodes the document stored under key.
	ReadObject(ctx context.Context, key string) (map[string]any, error)

	// WriteObject encodes obj and stores it under key.
	WriteObject(ctx context.Context, key string, obj map[string]any) error
}
