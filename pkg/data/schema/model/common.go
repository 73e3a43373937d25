// Package model declares the typed configuration documents and their
// descriptor tables.
//
// Each struct binds to its plain document through yaml tags; the matching
// Descriptor declares the same properties for flattening and coercion.
// Timestamps and semantic versions are kept as strings in the structs and
// validated by the descriptors.
package model

import (
	"hiero-solo/pkg/data/mapper"
)

// HelmChart holds the coordinates of a Helm chart.
type HelmChart struct {
	Name                    string `yaml:"name,omitempty"`
	Namespace               string `yaml:"namespace,omitempty"`
	Release                 string `yaml:"release,omitempty"`
	Repository              string `yaml:"repository,omitempty"`
	Directory               string `yaml:"directory,omitempty"`
	Version                 string `yaml:"version,omitempty"`
	LabelSelector           string `yaml:"labelSelector,omitempty"`
	ContainerName           string `yaml:"containerName,omitempty"`
	IngressClassName        string `yaml:"ingressClassName,omitempty"`
	IngressControllerName   string `yaml:"ingressControllerName,omitempty"`
	IngressControllerPrefix string `yaml:"ingressControllerPrefix,omitempty"`
}

// HelmChartDescriptor is the property table of HelmChart.
var HelmChartDescriptor = mapper.NewDescriptor("HelmChart",
	mapper.String("name"),
	mapper.String("namespace"),
	mapper.String("release"),
	mapper.String("repository"),
	mapper.String("directory"),
	mapper.String("version"),
	mapper.String("labelSelector"),
	mapper.String("containerName"),
	mapper.String("ingressClassName"),
	mapper.String("ingressControllerName"),
	mapper.String("ingressControllerPrefix"),
)

// UserIdentity names the operator that last touched a document.
type UserIdentity struct {
	Name     string `yaml:"name,omitempty"`
	Hostname string `yaml:"hostname,omitempty"`
}

// UserIdentityDescriptor is the property table of UserIdentity.
var UserIdentityDescriptor = mapper.NewDescriptor("UserIdentity",
	mapper.String("name"),
	mapper.String("hostname"),
)

// ApplicationVersions records the versions of the CLI and the deployed
// charts. Every value is a semantic version string.
type ApplicationVersions struct {
	CLI               string `yaml:"cli,omitempty"`
	Chart             string `yaml:"chart,omitempty"`
	ConsensusNode     string `yaml:"consensusNode,omitempty"`
	MirrorNodeChart   string `yaml:"mirrorNodeChart,omitempty"`
	ExplorerChart     string `yaml:"explorerChart,omitempty"`
	JSONRPCRelayChart string `yaml:"jsonRpcRelayChart,omitempty"`
	BlockNodeChart    string `yaml:"blockNodeChart,omitempty"`
}

// ApplicationVersionsDescriptor is the property table of ApplicationVersions.
var ApplicationVersionsDescriptor = mapper.NewDescriptor("ApplicationVersions",
	mapper.SemVer("cli"),
	mapper.SemVer("chart"),
	mapper.SemVer("consensusNode"),
	mapper.SemVer("mirrorNodeChart"),
	mapper.SemVer("explorerChart"),
	mapper.SemVer("jsonRpcRelayChart"),
	mapper.SemVer("blockNodeChart"),
)
