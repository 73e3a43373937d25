package migration

import (
	"fmt"
	"sort"

	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/plain"
	"hiero-solo/pkg/data/schema"
	"hiero-solo/pkg/data/schema/model"
)

// LocalConfigV1 converts the unversioned local config. Deployments keyed by
// name become an array with realm and shard 0, soloVersion moves to
// versions.cli and the operator identity is filled in.
func LocalConfigV1(opts Options) schema.Migration {
	return schema.Step(1, "deployments array and versions", func(doc map[string]any) (map[string]any, error) {
		clone, err := schema.Prepare(doc, 0)
		if err != nil {
			return nil, err
		}

		versions := plain.EnsureMap(clone, "versions")
		if _, ok := plain.String(versions, "cli"); !ok {
			versions["cli"] = plain.StringOr(clone, "soloVersion", opts.cliVersion())
		}
		delete(clone, "soloVersion")

		if plain.Map(clone, "userIdentity") == nil {
			id := opts.identity()
			clone["userIdentity"] = map[string]any{
				"name":     id.Name,
				"hostname": id.Hostname,
			}
		}
		delete(clone, "userEmailAddress")

		deployments, err := localDeployments(clone["deployments"])
		if err != nil {
			return nil, err
		}
		clone["deployments"] = deployments

		if plain.Map(clone, "clusterRefs") == nil {
			clone["clusterRefs"] = map[string]any{}
		}

		clone[schema.VersionKey] = 1
		return clone, nil
	})
}

func localDeployments(v any) ([]any, error) {
	switch d := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		out := make([]any, 0, len(d))
		for i, e := range d {
			entry, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("deployments.%d: expected an object, found %T", i, e)
			}
			out = append(out, localDeployment(entry, ""))
		}
		return out, nil
	case map[string]any:
		names := make([]string, 0, len(d))
		for name := range d {
			names = append(names, name)
		}
		sort.Strings(names)

		out := make([]any, 0, len(d))
		for _, name := range names {
			entry, ok := d[name].(map[string]any)
			if !ok && d[name] != nil {
				return nil, fmt.Errorf("deployments.%s: expected an object, found %T", name, d[name])
			}
			out = append(out, localDeployment(entry, name))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("deployments: expected an object or array, found %T", v)
	}
}

func localDeployment(entry map[string]any, name string) map[string]any {
	if entry == nil {
		entry = map[string]any{}
	}
	if name != "" {
		if _, ok := plain.String(entry, "name"); !ok {
			entry["name"] = name
		}
	}
	if _, ok := entry["namespace"]; !ok {
		entry["namespace"] = ""
	}
	if plain.Slice(entry, "clusters") == nil {
		entry["clusters"] = []any{}
	}
	for _, k := range []string{"realm", "shard"} {
		if _, ok := plain.Int(entry, k); !ok {
			entry[k] = 0
		}
	}
	return entry
}

// NewLocalConfigDefinition returns the local config schema.
func NewLocalConfigDefinition(m *mapper.ObjectMapper, opts Options) *schema.Definition[model.LocalConfig] {
	return schema.MustDefinition[model.LocalConfig]("LocalConfig", model.LocalConfigDescriptor, m,
		LocalConfigV1(opts))
}
