package schema

import (
	"fmt"
	"sort"

	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/plain"
)

// MigrateFunc upgrades a plain document. It must not mutate its input and
// must set the schema version of its output.
type MigrateFunc func(doc map[string]any) (map[string]any, error)

// Migration is one step of a schema's upgrade chain.
type Migration struct {
	// Range is the set of source versions the step accepts.
	Range VersionRange

	// Version is the version the step produces.
	Version Version

	// Description is a short human-readable summary.
	Description string

	// Migrate performs the upgrade.
	Migrate MigrateFunc
}

// Step builds the usual single-version migration from to-1 to to.
func Step(to Version, description string, fn MigrateFunc) Migration {
	return Migration{
		Range:       RangeOf(to - 1),
		Version:     to,
		Description: description,
		Migrate:     fn,
	}
}

// Prepare deep-clones doc and verifies it is at the version the migration
// expects. Migrate functions call it first.
func Prepare(doc map[string]any, expected Version) (map[string]any, error) {
	clone, err := plain.Clone(doc)
	if err != nil {
		return nil, err
	}

	found, err := DocumentVersion(clone)
	if err != nil {
		return nil, err
	}
	if found != expected {
		return nil, &InvalidSchemaVersionError{Found: found, Expected: expected}
	}
	return clone, nil
}

// Chain is an ordered, contiguous list of migrations.
type Chain []Migration

// NewChain sorts migrations and verifies they form a contiguous chain
// starting at version 0.
func NewChain(migrations ...Migration) (Chain, error) {
	c := append(Chain(nil), migrations...)
	sort.Slice(c, func(i, j int) bool { return c[i].Range.Begin < c[j].Range.Begin })

	next := Version(0)
	for _, m := range c {
		if m.Migrate == nil {
			return nil, fmt.Errorf("migration %s has no migrate function", m.Range)
		}
		if m.Range.Begin != next {
			return nil, fmt.Errorf("migration chain is not contiguous: expected range starting at %d, found %s", next, m.Range)
		}
		if m.Version < m.Range.End {
			return nil, fmt.Errorf("migration %s must produce a version outside its range, found %d", m.Range, m.Version)
		}
		next = m.Version
	}
	return c, nil
}

// Current returns the version produced by the last migration, or 0 for an
// empty chain.
func (c Chain) Current() Version {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].Version
}

// Find returns the migration whose range contains v.
func (c Chain) Find(v Version) (Migration, bool) {
	for _, m := range c {
		if m.Range.Contains(v) {
			return m, true
		}
	}
	return Migration{}, false
}

// Apply folds doc through every matching migration until it reaches the
// current version. The input document is never modified.
func (c Chain) Apply(name string, doc map[string]any) (map[string]any, error) {
	if doc == nil {
		doc = map[string]any{}
	}

	v, err := DocumentVersion(doc)
	if err != nil {
		return nil, &mapper.ConfigurationError{Key: VersionKey, Value: doc[VersionKey], Message: "invalid schema version", Err: err}
	}

	current := c.Current()
	if v > current {
		return nil, &InvalidSchemaVersionError{Schema: name, Found: v, Expected: current}
	}

	out := doc
	for v != current {
		m, ok := c.Find(v)
		if !ok {
			return nil, &InvalidSchemaVersionError{Schema: name, Found: v, Expected: current}
		}

		next, err := m.Migrate(out)
		if err != nil {
			return nil, &MigrationError{Schema: name, Range: m.Range, Err: err}
		}

		produced, err := DocumentVersion(next)
		if err != nil || produced != m.Version {
			return nil, &InvalidSchemaVersionError{Schema: name, Found: produced, Expected: m.Version}
		}

		out, v = next, produced
	}
	return out, nil
}
