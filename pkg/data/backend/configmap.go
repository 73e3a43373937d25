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

package backend

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"hiero-solo/pkg/k8s/client"
)

// ConfigMapStorageBackend stores keys as data entries of a single
// Kubernetes ConfigMap. Every call talks to the API server; the backend keeps
// no local copy.
type ConfigMapStorageBackend struct {
	client    *client.Client
	namespace string
	name      string
	labels    map[string]string
	logger    *slog.Logger
}

// NewConfigMapStorageBackend creates a backend over namespace/name. labels
// are applied when the ConfigMap has to be created.
func NewConfigMapStorageBackend(c *client.Client, namespace, name string, labels map[string]string, logger *slog.Logger) *ConfigMapStorageBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigMapStorageBackend{
		client:    c,
		namespace: namespace,
		name:      name,
		labels:    labels,
		logger:    logger,
	}
}

// Namespace returns the namespace of the backing ConfigMap.
func (b *ConfigMapStorageBackend) Namespace() string {
	return b.namespace
}

// Name returns the name of the backing ConfigMap.
func (b *ConfigMapStorageBackend) Name() string {
	return b.name
}

// Context returns the kubeconfig context of the backing cluster.
func (b *ConfigMapStorageBackend) Context() string {
	return b.client.Context()
}

// IsSupported implements StorageBackend.
func (b *ConfigMapStorageBackend) IsSupported(op Operation) bool {
	switch op {
	case OperationList, OperationReadBytes, OperationWriteBytes, OperationDelete:
		return true
	default:
		return false
	}
}

// List implements StorageBackend.
func (b *ConfigMapStorageBackend) List(ctx context.Context) ([]string, error) {
	cm, err := b.client.GetConfigMap(ctx, b.namespace, b.name)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, nil
		}
		return nil, &StorageBackendError{Operation: OperationList, Key: b.name, Err: err}
	}

	keys := make([]string, 0, len(cm.Data))
	for k := range cm.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ReadBytes implements StorageBackend.
func (b *ConfigMapStorageBackend) ReadBytes(ctx context.Context, k string) ([]byte, error) {
	if strings.TrimSpace(k) == "" {
		return nil, &IllegalArgumentError{Message: "key must not be empty"}
	}

	cm, err := b.client.GetConfigMap(ctx, b.namespace, b.name)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, notFound(OperationReadBytes, k)
		}
		return nil, &StorageBackendError{Operation: OperationReadBytes, Key: k, Err: err}
	}

	value, ok := cm.Data[k]
	if !ok {
		return nil, notFound(OperationReadBytes, k)
	}
	return []byte(value), nil
}

// WriteBytes implements StorageBackend.
func (b *ConfigMapStorageBackend) WriteBytes(ctx context.Context, k string, data []byte) error {
	if strings.TrimSpace(k) == "" {
		return &IllegalArgumentError{Message: "key must not be empty"}
	}
	if data == nil {
		return &IllegalArgumentError{Message: "data must not be nil"}
	}

	if _, err := b.client.ApplyConfigMapData(ctx, b.namespace, b.name, b.labels, map[string]string{k: string(data)}); err != nil {
		return &StorageBackendError{Operation: OperationWriteBytes, Key: k, Err: err}
	}

	b.logger.Debug("Wrote configmap key",
		"namespace", b.namespace,
		"configmap", b.name,
		"context", b.client.Context(),
		"key", k,
		"bytes", len(data))
	return nil
}

// Delete implements StorageBackend.
func (b *ConfigMapStorageBackend) Delete(ctx context.Context, k string) error {
	cm, err := b.client.GetConfigMap(ctx, b.namespace, b.name)
	if err != nil {
		if client.IsNotFound(err) {
			return notFound(OperationDelete, k)
		}
		return &StorageBackendError{Operation: OperationDelete, Key: k, Err: err}
	}

	if _, ok := cm.Data[k]; !ok {
		return notFound(OperationDelete, k)
	}
	delete(cm.Data, k)

	if _, err := b.client.UpdateConfigMap(ctx, cm); err != nil {
		return &StorageBackendError{Operation: OperationDelete, Key: k, Err: err}
	}
	return nil
}

// YamlConfigMapStorageBackend is a ConfigMapStorageBackend whose data entries
// hold YAML documents. It is a byte-level adapter and enforces no schema.
type YamlConfigMapStorageBackend struct {
	*ConfigMapStorageBackend
}

// NewYamlConfigMapStorageBackend creates a YAML backend over namespace/name.
func NewYamlConfigMapStorageBackend(c *client.Client, namespace, name string, labels map[string]string, logger *slog.Logger) *YamlConfigMapStorageBackend {
	return &YamlConfigMapStorageBackend{
		ConfigMapStorageBackend: NewConfigMapStorageBackend(c, namespace, name, labels, logger),
	}
}

// IsSupported implements StorageBackend.
func (b *YamlConfigMapStorageBackend) IsSupported(op Operation) bool {
	return op == OperationReadObject || op == OperationWriteObject || b.ConfigMapStorageBackend.IsSupported(op)
}

// ReadObject implements ObjectStorageBackend.
func (b *YamlConfigMapStorageBackend) ReadObject(ctx context.Context, k string) (map[string]any, error) {
	data, err := b.ReadBytes(ctx, k)
	if err != nil {
		return nil, err
	}
	return decodeObject(k, data)
}

// WriteObject implements ObjectStorageBackend.
func (b *YamlConfigMapStorageBackend) WriteObject(ctx context.Context, k string, obj map[string]any) error {
	data, err := encodeObject(k, obj)
	if err != nil {
		return err
	}
	return b.WriteBytes(ctx, k, data)
}
