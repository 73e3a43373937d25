package model

import (
	"slices"

	"hiero-solo/pkg/data/mapper"
)

// RemoteConfigMetadata records who last wrote the remote config.
type RemoteConfigMetadata struct {
	LastUpdatedAt string       `yaml:"lastUpdatedAt,omitempty"`
	LastUpdatedBy UserIdentity `yaml:"lastUpdatedBy"`
}

// Cluster is one cluster participating in a deployment.
type Cluster struct {
	Name                    string `yaml:"name"`
	Namespace               string `yaml:"namespace"`
	Deployment              string `yaml:"deployment"`
	DNSBaseDomain           string `yaml:"dnsBaseDomain,omitempty"`
	DNSConsensusNodePattern string `yaml:"dnsConsensusNodePattern,omitempty"`
}

// DeploymentHistory is the append-only log of commands applied to a
// deployment.
type DeploymentHistory struct {
	Commands            []string `yaml:"commands"`
	LastExecutedCommand string   `yaml:"lastExecutedCommand,omitempty"`
}

// RemoteConfig is the cluster-shared deployment document stored in a
// ConfigMap.
type RemoteConfig struct {
	SchemaVersion int                  `yaml:"schemaVersion"`
	Metadata      RemoteConfigMetadata `yaml:"metadata"`
	Versions      ApplicationVersions  `yaml:"versions"`
	Clusters      []Cluster            `yaml:"clusters"`
	State         DeploymentState      `yaml:"state"`
	History       DeploymentHistory    `yaml:"history"`
}

var (
	remoteConfigMetadataDescriptor = mapper.NewDescriptor("RemoteConfigMetadata",
		mapper.Time("lastUpdatedAt"),
		mapper.Object("lastUpdatedBy", UserIdentityDescriptor),
	)

	// ClusterDescriptor is the property table of Cluster.
	ClusterDescriptor = mapper.NewDescriptor("Cluster",
		mapper.String("name"),
		mapper.String("namespace"),
		mapper.String("deployment"),
		mapper.String("dnsBaseDomain"),
		mapper.String("dnsConsensusNodePattern"),
	)

	deploymentHistoryDescriptor = mapper.NewDescriptor("DeploymentHistory",
		mapper.ScalarArray("commands", mapper.TypeString),
		mapper.String("lastExecutedCommand"),
	)
)

// RemoteConfigDescriptor is the property table of RemoteConfig.
var RemoteConfigDescriptor = mapper.NewDescriptor("RemoteConfig",
	mapper.Int("schemaVersion"),
	mapper.Object("metadata", remoteConfigMetadataDescriptor),
	mapper.Object("versions", ApplicationVersionsDescriptor),
	mapper.ObjectArray("clusters", ClusterDescriptor),
	mapper.Object("state", DeploymentStateDescriptor),
	mapper.Object("history", deploymentHistoryDescriptor),
)

// Cluster returns the cluster with the given name.
func (c *RemoteConfig) Cluster(name string) (*Cluster, bool) {
	for i := range c.Clusters {
		if c.Clusters[i].Name == name {
			return &c.Clusters[i], true
		}
	}
	return nil, false
}

// AddCommand appends command to the history and marks it as the last
// executed one. When max is positive the oldest entries are dropped so
// that at most max commands remain.
func (c *RemoteConfig) AddCommand(command string, max int) {
	c.History.Commands = append(c.History.Commands, command)
	if max > 0 && len(c.History.Commands) > max {
		c.History.Commands = slices.Clone(c.History.Commands[len(c.History.Commands)-max:])
	}
	c.History.LastExecutedCommand = command
}
