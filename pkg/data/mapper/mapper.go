// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mapper

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/plain"
)

const (
	emptyArray  = "[]"
	emptyObject = "{}"
)

// ObjectMapper flattens and unflattens plain documents against Descriptor
// tables, formatting keys with its Formatter.
type ObjectMapper struct {
	formatter key.Formatter
}

// New creates an ObjectMapper producing keys with formatter.
func New(formatter key.Formatter) *ObjectMapper {
	return &ObjectMapper{formatter: formatter}
}

// Formatter returns the key formatter of this mapper.
func (m *ObjectMapper) Formatter() key.Formatter {
	return m.formatter
}

// ToFlatKeyMap walks obj along d and emits one entry per terminal scalar.
// Arrays become name.<index>..., maps become name.<key>... Property names
// are formatted by the formatter; map keys and indices are written
// verbatim. Empty arrays are emitted as "[]" and empty objects and maps
// as "{}". Nil values produce no entries.
func (m *ObjectMapper) ToFlatKeyMap(d *Descriptor, obj map[string]any) (map[string]string, error) {
	out := make(map[string]string)
	if err := m.flattenObject(d, obj, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromFlatKeyMap rebuilds a plain document from flat key/value pairs,
// coercing each value to the declared property type.
func (m *ObjectMapper) FromFlatKeyMap(d *Descriptor, flat map[string]string) (map[string]any, error) {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := map[string]any{}
	for _, k := range keys {
		if err := m.ApplyPropertyValue(d, obj, k, flat[k]); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// ApplyPropertyValue sets the leaf at k to value, creating intermediate
// objects and arrays as needed. Object and array properties accept a JSON
// encoded value.
func (m *ObjectMapper) ApplyPropertyValue(d *Descriptor, obj map[string]any, k, value string) error {
	return m.put(d, obj, k, value)
}

// PutScalar sets the scalar at k. value may be a string to parse or an
// already typed value.
func (m *ObjectMapper) PutScalar(d *Descriptor, obj map[string]any, k string, value any) error {
	return m.put(d, obj, k, value)
}

// PutObject replaces the object, array or map at k with value. value may
// be a plain tree, a JSON string or a struct with yaml tags.
func (m *ObjectMapper) PutObject(d *Descriptor, obj map[string]any, k string, value any) error {
	converted, err := toPlain(value)
	if err != nil {
		return &ConfigurationError{Key: k, Message: "cannot convert value", Err: err}
	}
	return m.put(d, obj, k, converted)
}

// KnownKey reports whether k addresses a declared property of d.
func (m *ObjectMapper) KnownKey(d *Descriptor, k string) bool {
	segments, err := m.formatter.Split(k)
	if err != nil {
		return false
	}

	for len(segments) > 0 {
		p, ok := d.Property(m.formatter.Normalize(segments[0]))
		if !ok {
			return false
		}
		segments = segments[1:]
		if len(segments) == 0 {
			return true
		}

		switch p.Kind {
		case KindScalar:
			return false
		case KindObject:
			d = p.Elem
			continue
		case KindArray:
			if !key.IsIndex(segments[0]) {
				return false
			}
		}

		// array index or map key
		segments = segments[1:]
		if len(segments) == 0 {
			return true
		}
		if p.Elem == nil {
			return false
		}
		d = p.Elem
	}
	return true
}

// Conform validates obj against d and coerces every scalar to its declared
// type. Unknown keys are a ConfigurationError.
func (m *ObjectMapper) Conform(d *Descriptor, obj map[string]any) (map[string]any, error) {
	return m.conformObject(d, obj, nil, true)
}

// Prune is Conform that silently drops unknown keys.
func (m *ObjectMapper) Prune(d *Descriptor, obj map[string]any) (map[string]any, error) {
	return m.conformObject(d, obj, nil, false)
}

// ModelToFlatKeyMap flattens a typed model.
func (m *ObjectMapper) ModelToFlatKeyMap(d *Descriptor, model any) (map[string]string, error) {
	obj, err := FromModel(model)
	if err != nil {
		return nil, err
	}
	return m.ToFlatKeyMap(d, obj)
}

// FlatKeyMapToModel rebuilds a typed model from flat key/value pairs.
func (m *ObjectMapper) FlatKeyMapToModel(d *Descriptor, flat map[string]string, out any) error {
	obj, err := m.FromFlatKeyMap(d, flat)
	if err != nil {
		return err
	}
	return ToModel(obj, out)
}

func (m *ObjectMapper) flattenObject(d *Descriptor, obj map[string]any, path []string, out map[string]string) error {
	for name, v := range obj {
		p, ok := d.Property(name)
		if !ok {
			return unknownKey(m.format(path, name))
		}
		if err := m.flattenValue(p, v, m.property(path, name), out); err != nil {
			return err
		}
	}
	return nil
}

func (m *ObjectMapper) flattenValue(p Property, v any, path []string, out map[string]string) error {
	if v == nil {
		return nil
	}

	switch p.Kind {
	case KindScalar:
		return m.flattenScalar(p.Type, v, path, out)
	case KindObject:
		child, ok := v.(map[string]any)
		if !ok {
			return m.shapeError(path, v, "object")
		}
		if len(child) == 0 {
			out[m.key(path)] = emptyObject
			return nil
		}
		return m.flattenObject(p.Elem, child, path, out)
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return m.shapeError(path, v, "array")
		}
		if len(arr) == 0 {
			out[m.key(path)] = emptyArray
			return nil
		}
		for i, e := range arr {
			if err := m.flattenElement(p, e, extend(path, strconv.Itoa(i)), out); err != nil {
				return err
			}
		}
	case KindMap:
		mm, ok := v.(map[string]any)
		if !ok {
			return m.shapeError(path, v, "map")
		}
		if len(mm) == 0 {
			out[m.key(path)] = emptyObject
			return nil
		}
		for k, e := range mm {
			if k == "" || strings.Contains(k, m.formatter.Separator()) {
				return &ConfigurationError{
					Key:     m.key(extend(path, k)),
					Message: fmt.Sprintf("map key must not be empty or contain %q", m.formatter.Separator()),
				}
			}
			if err := m.flattenElement(p, e, extend(path, k), out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *ObjectMapper) flattenElement(p Property, e any, path []string, out map[string]string) error {
	if e == nil {
		return nil
	}
	if p.Elem == nil {
		return m.flattenScalar(p.Type, e, path, out)
	}
	child, ok := e.(map[string]any)
	if !ok {
		return m.shapeError(path, e, "object")
	}
	if len(child) == 0 {
		out[m.key(path)] = emptyObject
		return nil
	}
	return m.flattenObject(p.Elem, child, path, out)
}

func (m *ObjectMapper) flattenScalar(t ScalarType, v any, path []string, out map[string]string) error {
	coerced, err := coerceScalar(t, v)
	if err != nil {
		return &ConfigurationError{Key: m.key(path), Value: v, Message: "invalid " + t.String(), Err: err}
	}
	out[m.key(path)] = formatScalar(coerced)
	return nil
}

func (m *ObjectMapper) put(d *Descriptor, obj map[string]any, k string, value any) error {
	if obj == nil {
		return &ConfigurationError{Key: k, Message: "target object must not be nil"}
	}

	segments, err := m.formatter.Split(k)
	if err != nil {
		return &ConfigurationError{Key: k, Message: "malformed key", Err: err}
	}
	return m.apply(d, obj, segments, k, value)
}

// apply walks physical segments. Property segments are normalized before
// lookup; map keys and indices are used as written.
func (m *ObjectMapper) apply(d *Descriptor, obj map[string]any, segments []string, fullKey string, value any) error {
	p, ok := d.Property(m.formatter.Normalize(segments[0]))
	if !ok {
		return unknownKey(fullKey)
	}

	next, err := m.applyProperty(p, obj[p.Name], segments[1:], fullKey, value)
	if err != nil {
		return err
	}
	obj[p.Name] = next
	return nil
}

func (m *ObjectMapper) applyProperty(p Property, current any, rest []string, fullKey string, value any) (any, error) {
	if len(rest) == 0 {
		return m.conformValue(p, value, fullKey)
	}

	switch p.Kind {
	case KindObject:
		child, _ := current.(map[string]any)
		if child == nil {
			child = map[string]any{}
		}
		return child, m.apply(p.Elem, child, rest, fullKey, value)
	case KindArray:
		idx, ok := key.ParseIndex(rest[0])
		if !ok {
			return nil, &ConfigurationError{Key: fullKey, Message: fmt.Sprintf("expected array index but found %q", rest[0])}
		}
		arr, _ := current.([]any)
		for len(arr) <= idx {
			arr = append(arr, emptyElement(p))
		}
		elem, err := m.applyElement(p, arr[idx], rest[1:], fullKey, value)
		if err != nil {
			return nil, err
		}
		arr[idx] = elem
		return arr, nil
	case KindMap:
		mm, _ := current.(map[string]any)
		if mm == nil {
			mm = map[string]any{}
		}
		elem, err := m.applyElement(p, mm[rest[0]], rest[1:], fullKey, value)
		if err != nil {
			return nil, err
		}
		mm[rest[0]] = elem
		return mm, nil
	default:
		return nil, unknownKey(fullKey)
	}
}

func (m *ObjectMapper) applyElement(p Property, current any, rest []string, fullKey string, value any) (any, error) {
	if len(rest) == 0 {
		if p.Elem == nil {
			return m.coerce(p.Type, value, fullKey)
		}
		decoded, err := decodeBlob(value, fullKey)
		if err != nil {
			return nil, err
		}
		return m.conformObject(p.Elem, decoded, []string{fullKey}, true)
	}

	if p.Elem == nil {
		return nil, unknownKey(fullKey)
	}
	child, _ := current.(map[string]any)
	if child == nil {
		child = map[string]any{}
	}
	return child, m.apply(p.Elem, child, rest, fullKey, value)
}

// conformValue converts a value assigned directly to property p. Non-scalar
// properties accept JSON strings.
func (m *ObjectMapper) conformValue(p Property, value any, fullKey string) (any, error) {
	if value == nil {
		return nil, nil
	}
	if p.Kind == KindScalar {
		return m.coerce(p.Type, value, fullKey)
	}

	decoded, err := decodeBlob(value, fullKey)
	if err != nil {
		return nil, err
	}
	return m.conformProperty(p, decoded, []string{fullKey}, true)
}

func (m *ObjectMapper) conformProperty(p Property, v any, path []string, strict bool) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch p.Kind {
	case KindScalar:
		return m.coerce(p.Type, v, m.key(path))
	case KindObject:
		return m.conformObject(p.Elem, v, path, strict)
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return nil, m.shapeError(path, v, "array")
		}
		out := make([]any, len(arr))
		for i, e := range arr {
			c, err := m.conformElement(p, e, extend(path, strconv.Itoa(i)), strict)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case KindMap:
		mm, ok := v.(map[string]any)
		if !ok {
			return nil, m.shapeError(path, v, "map")
		}
		out := make(map[string]any, len(mm))
		for k, e := range mm {
			c, err := m.conformElement(p, e, extend(path, k), strict)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	}
	return nil, unknownKey(m.key(path))
}

func (m *ObjectMapper) conformElement(p Property, e any, path []string, strict bool) (any, error) {
	if e == nil {
		return nil, nil
	}
	if p.Elem == nil {
		return m.coerce(p.Type, e, m.key(path))
	}
	return m.conformObject(p.Elem, e, path, strict)
}

func (m *ObjectMapper) conformObject(d *Descriptor, v any, path []string, strict bool) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, m.shapeError(path, v, "object")
	}

	out := make(map[string]any, len(obj))
	for k, val := range obj {
		p, ok := d.Property(k)
		if !ok {
			if strict {
				return nil, unknownKey(m.format(path, k))
			}
			continue
		}
		c, err := m.conformProperty(p, val, m.property(path, k), strict)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out[k] = c
		}
	}
	return out, nil
}

func (m *ObjectMapper) coerce(t ScalarType, v any, fullKey string) (any, error) {
	c, err := coerceScalar(t, v)
	if err != nil {
		return nil, &ConfigurationError{Key: fullKey, Value: v, Message: "invalid " + t.String(), Err: err}
	}
	return c, nil
}

func (m *ObjectMapper) shapeError(path []string, v any, want string) error {
	return &ConfigurationError{
		Key:     m.key(path),
		Message: fmt.Sprintf("expected %s but found %T", want, v),
	}
}

// key joins a physical path.
func (m *ObjectMapper) key(path []string) string {
	return m.formatter.Join(path)
}

// property extends a physical path with a property name.
func (m *ObjectMapper) property(path []string, name string) []string {
	return extend(path, m.formatter.Property(name))
}

func (m *ObjectMapper) format(path []string, name string) string {
	return m.key(m.property(path, name))
}

func decodeBlob(value any, fullKey string) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, &ConfigurationError{Key: fullKey, Value: s, Message: "expected a JSON encoded value", Err: err}
	}
	return plain.Normalize(decoded), nil
}

func emptyElement(p Property) any {
	if p.Elem != nil {
		return map[string]any{}
	}
	return nil
}

func extend(path []string, segment string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}

func toPlain(value any) (any, error) {
	switch value.(type) {
	case nil, string, map[string]any, []any:
		return value, nil
	}

	data, err := yaml.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return plain.Normalize(out), nil
}
