package configuration

import (
	"errors"
	"fmt"

	"hiero-solo/pkg/data/mapper"
)

// ConfigurationError is the error raised for malformed configuration data.
type ConfigurationError = mapper.ConfigurationError

// ErrPropertyNotFound is returned by the typed accessors of Config when no
// source defines the requested key.
var ErrPropertyNotFound = errors.New("property not found")

// ErrNotLoaded matches every UnloadedConfigError through errors.Is.
var ErrNotLoaded = errors.New("configuration not loaded")

// DuplicateConfigSourceError is returned when a source is added twice, or
// when two sources share a name and ordinal.
type DuplicateConfigSourceError struct {
	Name    string
	Ordinal int
}

func (e *DuplicateConfigSourceError) Error() string {
	return fmt.Sprintf("duplicate config source %q with ordinal %d", e.Name, e.Ordinal)
}

// UnloadedConfigError is returned when configuration is read before it
// has been loaded.
type UnloadedConfigError struct {
	Message string
}

func (e *UnloadedConfigError) Error() string {
	return e.Message
}

func (e *UnloadedConfigError) Is(target error) bool {
	return target == ErrNotLoaded
}
