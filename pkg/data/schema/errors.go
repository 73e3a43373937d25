package schema

import "fmt"

// InvalidSchemaVersionError is returned when a document declares a version
// newer than the schema knows, or a migration meets a version it does not
// expect.
type InvalidSchemaVersionError struct {
	Schema   string
	Found    Version
	Expected Version
}

func (e *InvalidSchemaVersionError) Error() string {
	msg := fmt.Sprintf("Invalid schema version: %d, expected: %d", e.Found, e.Expected)
	if e.Schema != "" {
		return fmt.Sprintf("%s (schema %s)", msg, e.Schema)
	}
	return msg
}

// MigrationError wraps a failure raised inside a migration step.
type MigrationError struct {
	Schema string
	Range  VersionRange
	Err    error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s of schema %s failed: %v", e.Range, e.Schema, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
