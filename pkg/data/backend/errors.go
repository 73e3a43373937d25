package backend

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is wrapped by StorageBackendError when a key is absent.
var ErrKeyNotFound = errors.New("key not found")

// StorageBackendError represents a failure of the underlying medium.
type StorageBackendError struct {
	Operation Operation
	Key       string
	Message   string
	Err       error
}

func (e *StorageBackendError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("%s failed", e.Operation)
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("storage backend error: %s: %v", msg, e.Err)
	}
	return "storage backend error: " + msg
}

func (e *StorageBackendError) Unwrap() error {
	return e.Err
}

// UnsupportedStorageOperationError is returned when a backend is asked to
// perform an operation outside its capability set.
type UnsupportedStorageOperationError struct {
	Operation Operation
	Backend   string
}

func (e *UnsupportedStorageOperationError) Error() string {
	return fmt.Sprintf("%s is not supported by the %s storage backend", e.Operation, e.Backend)
}

// IllegalArgumentError is returned for invalid caller input such as an empty
// key.
type IllegalArgumentError struct {
	Message string
}

func (e *IllegalArgumentError) Error() string {
	return e.Message
}

func notFound(op Operation, key string) error {
	return &StorageBackendError{Operation: op, Key: key, Message: "key not found", Err: ErrKeyNotFound}
}

// IsNotFound reports whether err signals a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}
