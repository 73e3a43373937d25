package configuration

import (
	"fmt"
	"sort"
	"strconv"

	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/plain"
)

// flattenPlain flattens an untyped document into dotted keys.
func flattenPlain(formatter key.Formatter, obj map[string]any) map[string]string {
	out := map[string]string{}
	flattenInto(formatter, obj, nil, out)
	return out
}

func flattenInto(formatter key.Formatter, v any, path []string, out map[string]string) {
	switch t := v.(type) {
	case nil:
	case map[string]any:
		for k, e := range t {
			flattenInto(formatter, e, append(append([]string(nil), path...), k), out)
		}
	case []any:
		for i, e := range t {
			flattenInto(formatter, e, append(append([]string(nil), path...), strconv.Itoa(i)), out)
		}
	case string:
		out[formatter.Join(path)] = t
	case float64:
		out[formatter.Join(path)] = strconv.FormatFloat(t, 'g', -1, 64)
	default:
		out[formatter.Join(path)] = fmt.Sprint(t)
	}
}

// indexPlain flattens an untyped document and indexes its keys.
func indexPlain(formatter key.Formatter, obj map[string]any) (*key.Forest, error) {
	return key.NewForest(flattenPlain(formatter, obj), formatter)
}

func emptyForest(formatter key.Formatter) *key.Forest {
	f, _ := key.NewForest(nil, formatter)
	return f
}

// subtree returns the object found at prefix, or an empty document.
func subtree(formatter key.Formatter, obj map[string]any, prefix string) (map[string]any, error) {
	if prefix == "" {
		return obj, nil
	}
	segments, err := formatter.Parse(prefix)
	if err != nil {
		return nil, err
	}

	current := obj
	for _, s := range segments {
		next := plain.Map(current, s)
		if next == nil {
			return map[string]any{}, nil
		}
		current = next
	}
	return current, nil
}

// materializeObject conforms the subtree of obj at prefix to d.
func materializeObject(m *mapper.ObjectMapper, obj map[string]any, prefix string, d *mapper.Descriptor) (map[string]any, error) {
	sub, err := subtree(m.Formatter(), obj, prefix)
	if err != nil {
		return nil, err
	}
	clone, err := plain.Clone(sub)
	if err != nil {
		return nil, err
	}
	return m.Prune(d, clone)
}

// mergePlain merges src into dst. Objects merge recursively, arrays and
// scalars are replaced and nil values are skipped.
func mergePlain(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		if v == nil {
			continue
		}
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = mergePlain(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
