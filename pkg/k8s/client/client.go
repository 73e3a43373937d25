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

// Package client provides a wrapper around the Kubernetes client-go library.
//
// This package simplifies client creation for a named kubeconfig context and
// provides the ConfigMap operations the remote configuration store needs.
package client

import (
	"context"
	"fmt"
	"sync"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client wraps a Kubernetes clientset bound to one kubeconfig context.
type Client struct {
	clientset  kubernetes.Interface
	restConfig *rest.Config
	context    string
	namespace  string
}

// Config contains configuration options for creating a Kubernetes client.
type Config struct {
	// Kubeconfig path. If empty, the default loading rules apply
	// (KUBECONFIG, then ~/.kube/config).
	Kubeconfig string

	// Context is the kubeconfig context to use. If empty, the current
	// context is used.
	Context string

	// Namespace is the default namespace for operations.
	// If empty, the namespace of the selected context is used.
	Namespace string
}

// New creates a new Kubernetes client with the provided configuration.
//
// Example:
//
//	c, err := client.New(client.Config{
//	    Kubeconfig: "/path/to/kubeconfig",
//	    Context:    "kind-solo-e2e",
//	})
func New(cfg Config) (*Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if cfg.Kubeconfig != "" {
		rules.ExplicitPath = cfg.Kubeconfig
	}

	overrides := &clientcmd.ConfigOverrides{CurrentContext: cfg.Context}
	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	restConfig, err := loader.ClientConfig()
	if err != nil {
		return nil, &ClientError{
			Operation: "build kubeconfig",
			Err:       err,
		}
	}

	namespace := cfg.Namespace
	if namespace == "" {
		ns, _, err := loader.Namespace()
		if err == nil {
			namespace = ns
		}
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, &ClientError{
			Operation: "create clientset",
			Err:       err,
		}
	}

	return &Client{
		clientset:  clientset,
		restConfig: restConfig,
		context:    cfg.Context,
		namespace:  namespace,
	}, nil
}

// NewFromClientset creates a Client from an existing Kubernetes clientset.
// This is useful for testing with fake clients.
func NewFromClientset(clientset kubernetes.Interface, contextName, namespace string) *Client {
	return &Client{
		clientset: clientset,
		context:   contextName,
		namespace: namespace,
	}
}

// Clientset returns the underlying Kubernetes clientset.
func (c *Client) Clientset() kubernetes.Interface {
	return c.clientset
}

// RestConfig returns the underlying REST configuration.
func (c *Client) RestConfig() *rest.Config {
	return c.restConfig
}

// Context returns the kubeconfig context this client is bound to.
func (c *Client) Context() string {
	return c.context
}

// Namespace returns the default namespace for this client.
func (c *Client) Namespace() string {
	return c.namespace
}

// GetConfigMap fetches a ConfigMap by name.
func (c *Client) GetConfigMap(ctx context.Context, namespace, name string) (*corev1.ConfigMap, error) {
	cm, err := c.clientset.CoreV1().ConfigMaps(c.ns(namespace)).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, &ClientError{
			Operation: fmt.Sprintf("get configmap %s/%s", c.ns(namespace), name),
			Err:       err,
		}
	}
	return cm, nil
}

// ConfigMapExists reports whether the named ConfigMap exists.
func (c *Client) ConfigMapExists(ctx context.Context, namespace, name string) (bool, error) {
	_, err := c.GetConfigMap(ctx, namespace, name)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// CreateConfigMap creates a ConfigMap holding data.
func (c *Client) CreateConfigMap(ctx context.Context, namespace, name string, labels, data map[string]string) (*corev1.ConfigMap, error) {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: c.ns(namespace),
			Labels:    labels,
		},
		Data: data,
	}

	created, err := c.clientset.CoreV1().ConfigMaps(c.ns(namespace)).Create(ctx, cm, metav1.CreateOptions{})
	if err != nil {
		return nil, &ClientError{
			Operation: fmt.Sprintf("create configmap %s/%s", c.ns(namespace), name),
			Err:       err,
		}
	}
	return created, nil
}

// UpdateConfigMap writes cm back to the cluster.
func (c *Client) UpdateConfigMap(ctx context.Context, cm *corev1.ConfigMap) (*corev1.ConfigMap, error) {
	updated, err := c.clientset.CoreV1().ConfigMaps(cm.Namespace).Update(ctx, cm, metav1.UpdateOptions{})
	if err != nil {
		return nil, &ClientError{
			Operation: fmt.Sprintf("update configmap %s/%s", cm.Namespace, cm.Name),
			Err:       err,
		}
	}
	return updated, nil
}

// ApplyConfigMapData stores data keys into the named ConfigMap, creating it
// with labels when it does not exist yet. Keys not present in data are kept.
func (c *Client) ApplyConfigMapData(ctx context.Context, namespace, name string, labels, data map[string]string) (*corev1.ConfigMap, error) {
	cm, err := c.GetConfigMap(ctx, namespace, name)
	if err != nil {
		if IsNotFound(err) {
			return c.CreateConfigMap(ctx, namespace, name, labels, data)
		}
		return nil, err
	}

	if cm.Data == nil {
		cm.Data = make(map[string]string, len(data))
	}
	for k, v := range data {
		cm.Data[k] = v
	}
	return c.UpdateConfigMap(ctx, cm)
}

// DeleteConfigMap removes the named ConfigMap.
func (c *Client) DeleteConfigMap(ctx context.Context, namespace, name string) error {
	err := c.clientset.CoreV1().ConfigMaps(c.ns(namespace)).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil {
		return &ClientError{
			Operation: fmt.Sprintf("delete configmap %s/%s", c.ns(namespace), name),
			Err:       err,
		}
	}
	return nil
}

func (c *Client) ns(namespace string) string {
	if namespace != "" {
		return namespace
	}
	return c.namespace
}

// IsNotFound reports whether err wraps a Kubernetes NotFound status.
func IsNotFound(err error) bool {
	return apierrors.IsNotFound(err)
}

// Provider hands out clients per kubeconfig context.
type Provider interface {
	ForContext(contextName string) (*Client, error)
}

// KubeconfigProvider creates clients from a kubeconfig file and caches them
// per context.
type KubeconfigProvider struct {
	kubeconfig string

	mu      sync.Mutex
	clients map[string]*Client
}

// NewKubeconfigProvider creates a provider for the given kubeconfig path.
// An empty path uses the default loading rules.
func NewKubeconfigProvider(kubeconfig string) *KubeconfigProvider {
	return &KubeconfigProvider{
		kubeconfig: kubeconfig,
		clients:    make(map[string]*Client),
	}
}

// ForContext implements Provider.
func (p *KubeconfigProvider) ForContext(contextName string) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[contextName]; ok {
		return c, nil
	}

	c, err := New(Config{Kubeconfig: p.kubeconfig, Context: contextName})
	if err != nil {
		return nil, err
	}
	p.clients[contextName] = c
	return c, nil
}

// StaticProvider serves pre-built clients keyed by context name.
type StaticProvider map[string]*Client

// ForContext implements Provider.
func (p StaticProvider) ForContext(contextName string) (*Client, error) {
	c, ok := p[contextName]
	if !ok {
		return nil, &ClientError{
			Operation: "resolve context",
			Err:       fmt.Errorf("no client configured for context %q", contextName),
		}
	}
	return c, nil
}
