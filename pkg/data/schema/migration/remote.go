package migration

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/plain"
	"hiero-solo/pkg/data/schema"
	"hiero-solo/pkg/data/schema/model"
)

// legacyVersionFields maps the version fields of the unversioned remote
// metadata to their place under versions.
var legacyVersionFields = []struct{ legacy, field string }{
	{"soloChartVersion", "chart"},
	{"hederaPlatformVersion", "consensusNode"},
	{"hederaMirrorNodeChartVersion", "mirrorNodeChart"},
	{"hederaExplorerChartVersion", "explorerChart"},
	{"hederaJsonRpcRelayChartVersion", "jsonRpcRelayChart"},
	{"hederaBlockNodeChartVersion", "blockNodeChart"},
}

// RemoteConfigV1 converts the unversioned remote config into the
// versions/clusters/state/history layout.
func RemoteConfigV1(opts Options) schema.Migration {
	return schema.Step(1, "versions, clusters, state and history", func(doc map[string]any) (map[string]any, error) {
		clone, err := schema.Prepare(doc, 0)
		if err != nil {
			return nil, err
		}

		metadata := plain.EnsureMap(clone, "metadata")
		metadata["lastUpdatedAt"] = opts.now()
		metadata["lastUpdatedBy"] = migrationIdentity()

		versions := map[string]any{
			"cli": plain.StringOr(metadata, "soloVersion", opts.cliVersion()),
		}
		delete(metadata, "soloVersion")
		for _, f := range legacyVersionFields {
			versions[f.field] = plain.StringOr(metadata, f.legacy, UnknownVersion)
			delete(metadata, f.legacy)
		}
		clone["versions"] = versions

		clusters, err := remoteClusters(clone["clusters"])
		if err != nil {
			return nil, err
		}
		clone["clusters"] = clusters
		delete(metadata, "namespace")
		delete(metadata, "deploymentName")

		components := plain.Map(clone, "components")
		state := map[string]any{
			"ledgerPhase": string(model.LedgerPhaseInitialized),
		}
		for _, name := range model.StateArrayNames {
			entries, err := legacyComponents(name, plain.Map(components, name))
			if err != nil {
				return nil, err
			}
			state[name] = entries
		}
		clone["state"] = state
		delete(clone, "components")

		history := map[string]any{"commands": legacyCommands(clone["commandHistory"])}
		if last, ok := plain.String(clone, "lastExecutedCommand"); ok {
			history["lastExecutedCommand"] = last
		}
		clone["history"] = history
		delete(clone, "commandHistory")
		delete(clone, "lastExecutedCommand")

		clone[schema.VersionKey] = 1
		return clone, nil
	})
}

func remoteClusters(v any) ([]any, error) {
	var entries []map[string]any
	switch c := v.(type) {
	case nil:
	case []any:
		for i, e := range c {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("clusters.%d: expected an object, found %T", i, e)
			}
			entries = append(entries, m)
		}
	case map[string]any:
		for _, name := range sortedKeys(c) {
			m, ok := c[name].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("clusters.%s: expected an object, found %T", name, c[name])
			}
			if _, ok := plain.String(m, "name"); !ok {
				m["name"] = name
			}
			entries = append(entries, m)
		}
	default:
		return nil, fmt.Errorf("clusters: expected an object or array, found %T", v)
	}

	out := make([]any, 0, len(entries))
	for _, m := range entries {
		cluster := map[string]any{}
		for _, k := range []string{"name", "namespace", "deployment", "dnsBaseDomain", "dnsConsensusNodePattern"} {
			if s, ok := plain.String(m, k); ok {
				cluster[k] = s
			}
		}
		out = append(out, cluster)
	}
	return out, nil
}

// legacyComponents turns a map of legacy components keyed by name into
// state entries. Consensus nodes keep their node id; the other types are
// numbered by their position in key order.
func legacyComponents(kind string, legacy map[string]any) ([]any, error) {
	out := make([]any, 0, len(legacy))
	for i, name := range sortedKeys(legacy) {
		c, ok := legacy[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("components.%s.%s: expected an object, found %T", kind, name, legacy[name])
		}

		id := i
		if kind == "consensusNodes" {
			if nodeID, ok := plain.Int(c, "nodeId"); ok {
				id = nodeID
			}
		}

		out = append(out, map[string]any{
			"metadata": map[string]any{
				"id":        id,
				"namespace": plain.StringOr(c, "namespace", ""),
				"cluster":   plain.StringOr(c, "cluster", ""),
				"phase":     string(model.PhaseStarted),
			},
		})
	}
	return out, nil
}

func legacyCommands(v any) []any {
	commands := []any{}
	switch h := v.(type) {
	case []any:
		commands = append(commands, h...)
	case map[string]any:
		for _, k := range sortedKeys(h) {
			commands = append(commands, k)
		}
	}
	return commands
}

// RemoteConfigV2 records the migration in the metadata and adds
// portForwardConfigs to every component.
func RemoteConfigV2(opts Options) schema.Migration {
	return schema.Step(2, "port forward configs", func(doc map[string]any) (map[string]any, error) {
		clone, err := schema.Prepare(doc, 1)
		if err != nil {
			return nil, err
		}

		metadata := plain.EnsureMap(clone, "metadata")
		metadata["lastUpdatedAt"] = opts.now()
		metadata["lastUpdatedBy"] = migrationIdentity()

		state := plain.EnsureMap(clone, "state")
		for _, name := range model.StateArrayNames {
			for _, e := range plain.Slice(state, name) {
				md := plain.Map(asMap(e), "metadata")
				if md != nil && plain.Slice(md, "portForwardConfigs") == nil {
					md["portForwardConfigs"] = []any{}
				}
			}
		}
		seedComponentIDs(state)

		clone[schema.VersionKey] = 2
		return clone, nil
	})
}

// RemoteConfigV3 moves component ids to a one-based numbering and lifts
// the consensus node references of relays out of their metadata.
func RemoteConfigV3() schema.Migration {
	return schema.Step(3, "one-based component ids", func(doc map[string]any) (map[string]any, error) {
		clone, err := schema.Prepare(doc, 2)
		if err != nil {
			return nil, err
		}

		state := plain.EnsureMap(clone, "state")
		seedComponentIDs(state)

		for _, name := range model.StateArrayNames {
			for i, e := range plain.Slice(state, name) {
				md := plain.Map(asMap(e), "metadata")
				if md == nil {
					continue
				}
				id, ok := plain.Int(md, "id")
				if !ok {
					return nil, fmt.Errorf("state.%s.%d.metadata.id: expected an integer, found %v", name, i, md["id"])
				}
				md["id"] = id + 1
			}
		}

		for i, e := range plain.Slice(state, "relayNodes") {
			relay := asMap(e)
			md := plain.Map(relay, "metadata")
			refs, ok := md["consensusNodeIds"].([]any)
			if !ok {
				continue
			}
			ids, err := consensusNodeIDs(refs)
			if err != nil {
				return nil, fmt.Errorf("state.relayNodes.%d: %w", i, err)
			}
			relay["consensusNodeIds"] = ids
			delete(md, "consensusNodeIds")
		}

		clone[schema.VersionKey] = 3
		return clone, nil
	})
}

// consensusNodeIDs resolves relay references given as node aliases
// ("node1") or as plain ids.
func consensusNodeIDs(refs []any) ([]any, error) {
	out := make([]any, 0, len(refs))
	for _, r := range refs {
		if s, ok := r.(string); ok && strings.HasPrefix(s, "node") {
			n, err := strconv.Atoi(strings.TrimPrefix(s, "node"))
			if err != nil {
				return nil, fmt.Errorf("invalid node alias %q", s)
			}
			out = append(out, n)
			continue
		}
		n, ok := plain.ToInt(r)
		if !ok {
			return nil, fmt.Errorf("invalid consensus node reference %v", r)
		}
		out = append(out, n)
	}
	return out, nil
}

// RemoteConfigV4 links every consensus node to all block nodes and adds
// the external block node list.
func RemoteConfigV4() schema.Migration {
	return schema.Step(4, "consensus node block node links", func(doc map[string]any) (map[string]any, error) {
		clone, err := schema.Prepare(doc, 3)
		if err != nil {
			return nil, err
		}

		state := plain.EnsureMap(clone, "state")
		blockNodeIDs := []any{}
		for _, e := range plain.Slice(state, "blockNodes") {
			if id, ok := plain.Int(plain.Map(asMap(e), "metadata"), "id"); ok {
				blockNodeIDs = append(blockNodeIDs, id)
			}
		}
		for _, e := range plain.Slice(state, "consensusNodes") {
			if node := asMap(e); node != nil {
				node["blockNodeIds"] = append([]any{}, blockNodeIDs...)
			}
		}
		if plain.Slice(state, "externalBlockNodes") == nil {
			state["externalBlockNodes"] = []any{}
		}

		clone[schema.VersionKey] = 4
		return clone, nil
	})
}

// seedComponentIDs creates the per-type id counters when the state has
// none, one ahead of the existing entries.
func seedComponentIDs(state map[string]any) {
	if plain.Map(state, "componentIds") != nil {
		return
	}
	ids := map[string]any{}
	for _, name := range model.StateArrayNames {
		ids[name] = len(plain.Slice(state, name)) + 1
	}
	state["componentIds"] = ids
}

// NewRemoteConfigDefinition returns the remote config schema.
func NewRemoteConfigDefinition(m *mapper.ObjectMapper, opts Options) *schema.Definition[model.RemoteConfig] {
	return schema.MustDefinition[model.RemoteConfig]("RemoteConfig", model.RemoteConfigDescriptor, m,
		RemoteConfigV1(opts),
		RemoteConfigV2(opts),
		RemoteConfigV3(),
		RemoteConfigV4(),
	)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
