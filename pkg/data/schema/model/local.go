package model

import (
	"slices"

	"hiero-solo/pkg/data/mapper"
)

// Deployment is one deployment known to the local operator.
type Deployment struct {
	Name      string   `yaml:"name"`
	Namespace string   `yaml:"namespace"`
	Clusters  []string `yaml:"clusters"`
	Realm     int      `yaml:"realm"`
	Shard     int      `yaml:"shard"`
}

// DeploymentDescriptor is the property table of Deployment.
var DeploymentDescriptor = mapper.NewDescriptor("Deployment",
	mapper.String("name"),
	mapper.String("namespace"),
	mapper.ScalarArray("clusters", mapper.TypeString),
	mapper.Int("realm"),
	mapper.Int("shard"),
)

// LocalConfig is the per-operator state stored in local-config.yaml.
type LocalConfig struct {
	SchemaVersion int                 `yaml:"schemaVersion"`
	Versions      ApplicationVersions `yaml:"versions"`
	UserIdentity  UserIdentity        `yaml:"userIdentity"`
	Deployments   []Deployment        `yaml:"deployments"`
	ClusterRefs   map[string]string   `yaml:"clusterRefs"`
}

// LocalConfigDescriptor is the property table of LocalConfig.
var LocalConfigDescriptor = mapper.NewDescriptor("LocalConfig",
	mapper.Int("schemaVersion"),
	mapper.Object("versions", ApplicationVersionsDescriptor),
	mapper.Object("userIdentity", UserIdentityDescriptor),
	mapper.ObjectArray("deployments", DeploymentDescriptor),
	mapper.ScalarMap("clusterRefs", mapper.TypeString),
)

// Deployment returns the deployment with the given name.
func (c *LocalConfig) Deployment(name string) (*Deployment, bool) {
	for i := range c.Deployments {
		if c.Deployments[i].Name == name {
			return &c.Deployments[i], true
		}
	}
	return nil, false
}

// AddDeployment appends a deployment unless one with the same name exists.
// It reports whether the deployment was added.
func (c *LocalConfig) AddDeployment(name, namespace string, realm, shard int) bool {
	if _, ok := c.Deployment(name); ok {
		return false
	}
	c.Deployments = append(c.Deployments, Deployment{
		Name:      name,
		Namespace: namespace,
		Clusters:  []string{},
		Realm:     realm,
		Shard:     shard,
	})
	return true
}

// RemoveDeployment deletes the named deployment. It reports whether a
// deployment was removed.
func (c *LocalConfig) RemoveDeployment(name string) bool {
	n := len(c.Deployments)
	c.Deployments = slices.DeleteFunc(c.Deployments, func(d Deployment) bool { return d.Name == name })
	return len(c.Deployments) != n
}

// AddClusterRef maps a cluster reference to a kubeconfig context.
func (c *LocalConfig) AddClusterRef(clusterRef, contextName string) {
	if c.ClusterRefs == nil {
		c.ClusterRefs = map[string]string{}
	}
	c.ClusterRefs[clusterRef] = contextName
}

// RemoveClusterRef drops a cluster reference mapping.
func (c *LocalConfig) RemoveClusterRef(clusterRef string) {
	delete(c.ClusterRefs, clusterRef)
}

// AddClusterRefToDeployment attaches a cluster reference to a deployment.
// It reports whether the deployment exists.
func (c *LocalConfig) AddClusterRefToDeployment(clusterRef, deployment string) bool {
	d, ok := c.Deployment(deployment)
	if !ok {
		return false
	}
	if !slices.Contains(d.Clusters, clusterRef) {
		d.Clusters = append(d.Clusters, clusterRef)
	}
	return true
}
