// Package config bundles the factory-default product configuration files.
package config

import "embed"

// Dir is the directory of the bundled files inside FS.
const Dir = "."

// FS holds the bundled <product>-config.yaml files.
//
//go:embed *.yaml
var FS embed.FS

// Bundled file names.
const (
	BlockNodeFile    = "block-node-config.yaml"
	MirrorNodeFile   = "mirror-node-config.yaml"
	ExplorerFile     = "explorer-config.yaml"
	JSONRPCRelayFile = "json-rpc-relay-config.yaml"
	SoloFile         = "solo-config.yaml"
)
