package key

import "strings"

// Prefix is a namespace prepended to physical keys, such as SOLO_MIRROR_NODE
// for environment variables.
type Prefix struct {
	value     string
	formatter Formatter
}

// NewPrefix creates a prefix for keys produced by formatter.
func NewPrefix(value string, formatter Formatter) Prefix {
	return Prefix{value: value, formatter: formatter}
}

// String returns the raw prefix value.
func (p Prefix) String() string {
	return p.value
}

// IsEmpty reports whether the prefix has no value.
func (p Prefix) IsEmpty() bool {
	return p.value == ""
}

// Matches reports whether key lives under the prefix. The prefix must be
// followed by the separator so SOLO_MIRROR does not match SOLO_MIRRORS_X.
func (p Prefix) Matches(key string) bool {
	if p.value == "" {
		return true
	}
	return strings.HasPrefix(key, p.value+p.formatter.Separator())
}

// Strip removes the prefix and its separator from key. Keys outside the
// prefix are returned unchanged.
func (p Prefix) Strip(key string) string {
	if p.value == "" || !p.Matches(key) {
		return key
	}
	return strings.TrimPrefix(key, p.value+p.formatter.Separator())
}

// Add prepends the prefix and separator to key.
func (p Prefix) Add(key string) string {
	if p.value == "" {
		return key
	}
	return p.value + p.formatter.Separator() + key
}
