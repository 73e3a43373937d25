// Package plain holds helpers for plain configuration documents: the
// untyped map[string]any / []any trees produced by YAML and JSON decoders
// and consumed by schema migrations.
package plain

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tiendc/go-deepcopy"
)

// Normalize converts decoder output into the canonical plain form:
// map[string]any, []any, string, int, float64 and bool. Timestamps become
// RFC 3339 strings.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = val
		}
		return out
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case int64:
		return int(t)
	case int32:
		return int(t)
	case uint64:
		return int(t)
	default:
		return v
	}
}

// Clone returns a deep copy of doc. A nil document clones to an empty one.
func Clone(doc map[string]any) (map[string]any, error) {
	if doc == nil {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := deepcopy.Copy(&out, doc); err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	return out, nil
}

// Map returns doc[key] as a map, or nil when absent or of another type.
func Map(doc map[string]any, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
}

// EnsureMap returns doc[key] as a map, creating an empty one when needed.
func EnsureMap(doc map[string]any, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	doc[key] = m
	return m
}

// Slice returns doc[key] as a slice, or nil when absent or of another type.
func Slice(doc map[string]any, key string) []any {
	s, _ := doc[key].([]any)
	return s
}

// String returns doc[key] as a string and whether it was a non-empty string.
func String(doc map[string]any, key string) (string, bool) {
	s, ok := doc[key].(string)
	return s, ok && s != ""
}

// StringOr returns doc[key] as a string or def when absent or empty.
func StringOr(doc map[string]any, key, def string) string {
	if s, ok := String(doc, key); ok {
		return s
	}
	return def
}

// Int returns doc[key] as an int. Whole floats and numeric strings are
// accepted.
func Int(doc map[string]any, key string) (int, bool) {
	return ToInt(doc[key])
}

// ToInt converts a plain scalar to an int.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case string:
		i, err := strconv.Atoi(n)
		if err == nil {
			return i, true
		}
	}
	return 0, false
}
