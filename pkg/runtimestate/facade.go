// Package runtimestate exposes the loaded configuration of the CLI as
// read-mostly facades: one per product config, plus the operator's local
// config and the deployment's remote config.
package runtimestate

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"hiero-solo/pkg/data/schema/model"
)

// HelmChart is a read view over a chart entry.
type HelmChart struct {
	chart model.HelmChart
}

// NewHelmChart wraps chart.
func NewHelmChart(chart model.HelmChart) HelmChart {
	return HelmChart{chart: chart}
}

func (h HelmChart) Name() string                    { return h.chart.Name }
func (h HelmChart) Namespace() string               { return h.chart.Namespace }
func (h HelmChart) Release() string                 { return h.chart.Release }
func (h HelmChart) Directory() string               { return h.chart.Directory }
func (h HelmChart) Version() string                 { return h.chart.Version }
func (h HelmChart) LabelSelector() string           { return h.chart.LabelSelector }
func (h HelmChart) ContainerName() string           { return h.chart.ContainerName }
func (h HelmChart) IngressClassName() string        { return h.chart.IngressClassName }
func (h HelmChart) IngressControllerName() string   { return h.chart.IngressControllerName }
func (h HelmChart) IngressControllerPrefix() string { return h.chart.IngressControllerPrefix }

// Repository returns the chart source. A local chart directory takes
// precedence over the remote repository.
func (h HelmChart) Repository() string {
	if h.chart.Directory != "" {
		return h.chart.Directory
	}
	return h.chart.Repository
}

// Labels splits the label selector into its individual requirements.
func (h HelmChart) Labels() []string {
	if h.chart.LabelSelector == "" {
		return nil
	}
	parts := strings.Split(h.chart.LabelSelector, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

// Model returns a copy of the underlying chart entry.
func (h HelmChart) Model() model.HelmChart {
	return h.chart
}

// VersionComponent names one entry of ApplicationVersions.
type VersionComponent string

const (
	VersionCLI           VersionComponent = "cli"
	VersionChart         VersionComponent = "chart"
	VersionConsensusNode VersionComponent = "consensusNode"
	VersionMirrorNode    VersionComponent = "mirrorNodeChart"
	VersionExplorer      VersionComponent = "explorerChart"
	VersionJSONRPCRelay  VersionComponent = "jsonRpcRelayChart"
	VersionBlockNode     VersionComponent = "blockNodeChart"
)

// ApplicationVersions is a typed view over recorded component versions.
// Missing or unparsable entries read as 0.0.0.
type ApplicationVersions struct {
	versions *model.ApplicationVersions
}

// NewApplicationVersions wraps versions. Setters write through.
func NewApplicationVersions(versions *model.ApplicationVersions) ApplicationVersions {
	return ApplicationVersions{versions: versions}
}

// Get returns the version recorded for component.
func (v ApplicationVersions) Get(component VersionComponent) *semver.Version {
	field := v.field(component)
	if field == nil || *field == "" {
		return semver.New(0, 0, 0, "", "")
	}
	parsed, err := semver.NewVersion(*field)
	if err != nil {
		return semver.New(0, 0, 0, "", "")
	}
	return parsed
}

// Set records version for component. It reports false for an unknown
// component.
func (v ApplicationVersions) Set(component VersionComponent, version *semver.Version) bool {
	field := v.field(component)
	if field == nil {
		return false
	}
	*field = version.String()
	return true
}

func (v ApplicationVersions) CLI() *semver.Version           { return v.Get(VersionCLI) }
func (v ApplicationVersions) Chart() *semver.Version         { return v.Get(VersionChart) }
func (v ApplicationVersions) ConsensusNode() *semver.Version { return v.Get(VersionConsensusNode) }
func (v ApplicationVersions) MirrorNode() *semver.Version    { return v.Get(VersionMirrorNode) }
func (v ApplicationVersions) Explorer() *semver.Version      { return v.Get(VersionExplorer) }
func (v ApplicationVersions) JSONRPCRelay() *semver.Version  { return v.Get(VersionJSONRPCRelay) }
func (v ApplicationVersions) BlockNode() *semver.Version     { return v.Get(VersionBlockNode) }

func (v ApplicationVersions) field(component VersionComponent) *string {
	if v.versions == nil {
		return nil
	}
	switch component {
	case VersionCLI:
		return &v.versions.CLI
	case VersionChart:
		return &v.versions.Chart
	case VersionConsensusNode:
		return &v.versions.ConsensusNode
	case VersionMirrorNode:
		return &v.versions.MirrorNodeChart
	case VersionExplorer:
		return &v.versions.ExplorerChart
	case VersionJSONRPCRelay:
		return &v.versions.JSONRPCRelayChart
	case VersionBlockNode:
		return &v.versions.BlockNodeChart
	}
	return nil
}
