// Package components manipulates the component topology held in a
// deployment's remote configuration.
package components

import (
	"fmt"

	"hiero-solo/pkg/data/schema/model"
)

// ComponentType names one component array of a deployment state. The value
// doubles as the array name and the componentIds counter name.
type ComponentType string

const (
	ConsensusNode ComponentType = "consensusNodes"
	BlockNode     ComponentType = "blockNodes"
	MirrorNode    ComponentType = "mirrorNodes"
	RelayNode     ComponentType = "relayNodes"
	HAProxy       ComponentType = "haProxies"
	EnvoyProxy    ComponentType = "envoyProxies"
	Explorer      ComponentType = "explorers"
)

// Types returns every component type in persistence order.
func Types() []ComponentType {
	types := make([]ComponentType, 0, len(model.StateArrayNames))
	for _, name := range model.StateArrayNames {
		types = append(types, ComponentType(name))
	}
	return types
}

// ParseType resolves a component type by its array name.
func ParseType(name string) (ComponentType, error) {
	for _, t := range Types() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown component type %q", name)
}
