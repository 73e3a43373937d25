// Package key maps logical property paths to the physical key layout of a
// storage medium and indexes flat key sets as a tree.
//
// A logical path is a sequence of segments. Each segment is either a
// camelCase property name, a map key, or a non-negative array index.
// Formatters turn that sequence into a single physical key and back:
//
//	segments:    [deployments 0 clusters 0]
//	config:      deployments.0.clusters.0
//	environment: DEPLOYMENTS_0_CLUSTERS_0
//
// Only property names change case. Map keys and indices are written
// verbatim, so clusterRefs[e2e-cluster-1] becomes
// CLUSTER-REFS_e2e-cluster-1. Callers holding a descriptor split keys with
// Split and normalize only the property segments; Parse is the
// descriptor-free approximation that normalizes upper-case segments.
package key

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	// ConfigSeparator separates segments of configuration (YAML-style) keys.
	ConfigSeparator = "."

	// EnvironmentSeparator separates segments of environment variable names.
	EnvironmentSeparator = "_"
)

// Formatter converts between segment sequences and physical keys.
//
// Implementations must be a bijection over the keys produced by the object
// mapper for a schema: Format(Parse(k)) == k.
type Formatter interface {
	// Separator returns the string placed between segments.
	Separator() string

	// Format joins property segments into a physical key.
	Format(segments []string) string

	// Parse splits a physical key into logical segments.
	Parse(key string) ([]string, error)

	// Normalize converts a single physical property segment into its
	// logical form.
	Normalize(segment string) string

	// Property converts a logical property name into its physical segment.
	Property(name string) string

	// Split splits a physical key into its physical segments.
	Split(key string) ([]string, error)

	// Join joins physical segments into a key.
	Join(segments []string) string
}

func split(key, separator string) ([]string, error) {
	if strings.TrimSpace(key) == "" {
		return nil, &InvalidKeyError{Key: key, Reason: "key must not be empty"}
	}

	segments := strings.Split(strings.TrimSpace(key), separator)
	for _, s := range segments {
		if s == "" {
			return nil, &InvalidKeyError{Key: key, Reason: "empty segment"}
		}
	}
	return segments, nil
}

// ConfigFormatter formats keys as dotted paths with camelCase segments.
type ConfigFormatter struct{}

// NewConfigFormatter returns the formatter used by YAML-shaped sources.
func NewConfigFormatter() *ConfigFormatter {
	return &ConfigFormatter{}
}

// Separator implements Formatter.
func (f *ConfigFormatter) Separator() string {
	return ConfigSeparator
}

// Format implements Formatter.
func (f *ConfigFormatter) Format(segments []string) string {
	return strings.Join(segments, ConfigSeparator)
}

// Parse implements Formatter. Config keys are already logical.
func (f *ConfigFormatter) Parse(key string) ([]string, error) {
	return split(key, ConfigSeparator)
}

// Split implements Formatter.
func (f *ConfigFormatter) Split(key string) ([]string, error) {
	return split(key, ConfigSeparator)
}

// Join implements Formatter.
func (f *ConfigFormatter) Join(segments []string) string {
	return strings.Join(segments, ConfigSeparator)
}

// Property implements Formatter.
func (f *ConfigFormatter) Property(name string) string {
	return name
}

// Normalize implements Formatter.
//
// Upper-case segments such as "ENV" are lowered before conversion so they do
// not turn into "eNV". Kebab-case segments become camelCase.
func (f *ConfigFormatter) Normalize(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return segment
	}
	if isUpper(segment) {
		segment = strings.ToLower(segment)
	}
	return KebabToCamel(segment)
}

// EnvironmentFormatter formats keys as environment variable names.
//
// Each camelCase property segment becomes UPPER-KEBAB-CASE and segments are
// joined with underscores, e.g. helmChart.directory becomes
// HELM-CHART_DIRECTORY. Array indices stay bare integers. Format treats every
// segment as a property name; the object mapper formats map keys verbatim
// through Property and Join.
type EnvironmentFormatter struct{}

// NewEnvironmentFormatter returns the formatter used by environment sources.
func NewEnvironmentFormatter() *EnvironmentFormatter {
	return &EnvironmentFormatter{}
}

// Separator implements Formatter.
func (f *EnvironmentFormatter) Separator() string {
	return EnvironmentSeparator
}

// Format implements Formatter.
func (f *EnvironmentFormatter) Format(segments []string) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = CamelToUpperKebab(s)
	}
	return strings.Join(parts, EnvironmentSeparator)
}

// Parse implements Formatter. Upper-case segments are normalized to
// camelCase; segments holding lower-case letters are kept verbatim.
func (f *EnvironmentFormatter) Parse(key string) ([]string, error) {
	segments, err := split(key, EnvironmentSeparator)
	if err != nil {
		return nil, err
	}
	for i, s := range segments {
		segments[i] = f.Normalize(s)
	}
	return segments, nil
}

// Split implements Formatter.
func (f *EnvironmentFormatter) Split(key string) ([]string, error) {
	return split(key, EnvironmentSeparator)
}

// Join implements Formatter.
func (f *EnvironmentFormatter) Join(segments []string) string {
	return strings.Join(segments, EnvironmentSeparator)
}

// Property implements Formatter.
func (f *EnvironmentFormatter) Property(name string) string {
	return CamelToUpperKebab(name)
}

// Normalize implements Formatter.
func (f *EnvironmentFormatter) Normalize(segment string) string {
	segment = strings.TrimSpace(segment)
	if !isUpper(segment) {
		return segment
	}
	return KebabToCamel(strings.ToLower(segment))
}

// CamelToUpperKebab converts helmChart to HELM-CHART.
func CamelToUpperKebab(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// KebabToCamel converts helm-chart to helmChart. Strings without dashes are
// returned unchanged.
func KebabToCamel(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	upperNext := false
	for _, r := range s {
		if r == '-' {
			upperNext = b.Len() > 0
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsIndex reports whether a segment is a non-negative array index.
func IsIndex(segment string) bool {
	_, ok := ParseIndex(segment)
	return ok
}

// ParseIndex parses a segment as a non-negative array index.
func ParseIndex(segment string) (int, bool) {
	if segment == "" {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return i, true
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
