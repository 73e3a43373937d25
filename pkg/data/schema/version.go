// Package schema implements versioned schema definitions and the forward
// migration chain that upgrades persisted documents to the current shape.
package schema

import (
	"fmt"

	"hiero-solo/pkg/data/plain"
)

// VersionKey is the document property holding the schema version.
const VersionKey = "schemaVersion"

// Version is a schema version number. Version 0 is the legacy shape that
// predates versioning.
type Version int

// VersionRange is the half-open interval [Begin, End) of versions.
type VersionRange struct {
	Begin Version
	End   Version
}

// NewVersionRange creates the range [begin, end).
func NewVersionRange(begin, end Version) VersionRange {
	return VersionRange{Begin: begin, End: end}
}

// RangeOf returns the range [v, v+1) holding exactly v.
func RangeOf(v Version) VersionRange {
	return VersionRange{Begin: v, End: v + 1}
}

// Contains reports whether v lies in the range.
func (r VersionRange) Contains(v Version) bool {
	return v >= r.Begin && v < r.End
}

func (r VersionRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Begin, r.End)
}

// DocumentVersion reads the schema version of doc. A missing version is 0.
func DocumentVersion(doc map[string]any) (Version, error) {
	raw, ok := doc[VersionKey]
	if !ok || raw == nil {
		return 0, nil
	}

	v, ok := plain.ToInt(raw)
	if !ok || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, found %v", VersionKey, raw)
	}
	return Version(v), nil
}
