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

// Package app builds the objects shared by every solo command.
//
// A Context is constructed once at process start and handed to each
// component constructor. Nothing in the engine looks dependencies up
// globally.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"hiero-solo/pkg/core/config"
	"hiero-solo/pkg/core/logging"
	"hiero-solo/pkg/data/configuration"
	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/data/mapper"
	"hiero-solo/pkg/data/schema/migration"
	"hiero-solo/pkg/data/schema/model"
	"hiero-solo/pkg/k8s/client"
	"hiero-solo/pkg/k8s/lease"
	"hiero-solo/pkg/metrics"
	"hiero-solo/pkg/runtimestate"
)

// Version is the CLI version recorded in new and migrated documents.
var Version = "0.1.0"

var _ configuration.Recorder = (*metrics.EngineMetrics)(nil)

// Options holds optional replacements for process-level inputs.
type Options struct {
	// Logger defaults to a logger at Settings.LogLevel writing to stderr.
	Logger *slog.Logger

	// Clients defaults to a kubeconfig provider over Settings.Kubeconfig.
	Clients client.Provider

	// Identity defaults to the current OS user and hostname.
	Identity func() model.UserIdentity

	// Now defaults to time.Now.
	Now func() time.Time

	// Environ defaults to os.Environ.
	Environ func() []string
}

// Context is the application context.
type Context struct {
	Settings *config.Settings
	Logger   *slog.Logger

	// ConfigMapper binds camelCase documents, EnvMapper binds
	// SCREAMING_SNAKE environment keys.
	ConfigMapper *mapper.ObjectMapper
	EnvMapper    *mapper.ObjectMapper

	Provider *configuration.Provider
	Clients  client.Provider

	Registry *prometheus.Registry
	Metrics  *metrics.EngineMetrics

	identity func() model.UserIdentity
	now      func() time.Time

	localOnce sync.Once
	local     *runtimestate.LocalConfigRuntimeState
}

// New creates the application context from resolved settings.
func New(settings *config.Settings, opts Options) (*Context, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(settings.LogLevel)
	}

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	providerOpts := []configuration.ProviderOption{configuration.WithRecorder(engineMetrics)}
	if opts.Environ != nil {
		providerOpts = append(providerOpts, configuration.WithEnviron(opts.Environ))
	}

	clients := opts.Clients
	if clients == nil {
		clients = client.NewKubeconfigProvider(settings.Kubeconfig)
	}

	identity := opts.Identity
	if identity == nil {
		identity = CurrentIdentity
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Context{
		Settings:     settings,
		Logger:       logger,
		ConfigMapper: mapper.New(key.NewConfigFormatter()),
		EnvMapper:    mapper.New(key.NewEnvironmentFormatter()),
		Provider:     configuration.NewProvider(logger, providerOpts...),
		Clients:      clients,
		Registry:     registry,
		Metrics:      engineMetrics,
		identity:     identity,
		now:          now,
	}, nil
}

// CurrentIdentity returns the OS user name and hostname. Lookup failures
// leave the field empty.
func CurrentIdentity() model.UserIdentity {
	var id model.UserIdentity
	if u, err := user.Current(); err == nil {
		id.Name = u.Username
	}
	if host, err := os.Hostname(); err == nil {
		id.Hostname = host
	}
	return id
}

// Identity returns the operator identity.
func (c *Context) Identity() model.UserIdentity {
	return c.identity()
}

// MigrationOptions returns the inputs migrations record into documents.
func (c *Context) MigrationOptions() migration.Options {
	return migration.Options{
		CLIVersion: Version,
		Identity:   c.identity,
		Now:        c.now,
	}
}

// LocalConfig returns the local config state. The same instance is
// returned on every call; it is not loaded.
func (c *Context) LocalConfig() *runtimestate.LocalConfigRuntimeState {
	c.localOnce.Do(func() {
		c.local = runtimestate.NewLocalConfigRuntimeState(runtimestate.LocalConfigOptions{
			BasePath:  c.Settings.Home,
			FileName:  c.Settings.LocalConfigFile,
			Mapper:    c.ConfigMapper,
			Migration: c.MigrationOptions(),
			Recorder:  c.Metrics,
			Logger:    c.Logger.With("component", "local_config"),
		})
	})
	return c.local
}

// RemoteConfig returns a new remote config state that resolves cluster
// references through LocalConfig.
func (c *Context) RemoteConfig() *runtimestate.RemoteConfigRuntimeState {
	return runtimestate.NewRemoteConfigRuntimeState(runtimestate.RemoteConfigOptions{
		Clients:           c.Clients,
		Local:             c.LocalConfig(),
		MaxCommandHistory: c.Settings.MaxCommandHistory,
		Mapper:            c.ConfigMapper,
		Migration:         c.MigrationOptions(),
		Recorder:          c.Metrics,
		Logger:            c.Logger.With("component", "remote_config"),
	})
}

// ProductOptions returns the options shared by the product config states.
func (c *Context) ProductOptions(sources ...configuration.ConfigSource) runtimestate.ProductOptions {
	return runtimestate.ProductOptions{
		Provider: c.Provider,
		Mapper:   c.ConfigMapper,
		Logger:   c.Logger.With("component", "product_config"),
		Sources:  sources,
	}
}

// Lock returns a Lease lock for a deployment namespace on a kubeconfig
// context, held as the current operator.
func (c *Context) Lock(namespace, contextName string) (*lease.Lock, error) {
	k, err := c.Clients.ForContext(contextName)
	if err != nil {
		return nil, err
	}
	id := c.identity()
	return lease.New(lease.Config{
		Namespace: namespace,
		Identity:  lease.NewHolderIdentity(id.Name, id.Hostname),
	}, k, c.Logger.With("component", "lease"))
}

// WithLock runs fn while holding the deployment Lease. The Lease is
// released afterwards even when fn fails.
func (c *Context) WithLock(ctx context.Context, namespace, contextName string, fn func(context.Context) error) error {
	l, err := c.Lock(namespace, contextName)
	if err != nil {
		return err
	}
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			c.Logger.Warn("failed to release lease", "namespace", namespace, "error", err)
		}
	}()
	return fn(ctx)
}

// WriteMetrics writes the engine metrics to Settings.MetricsOutput. It
// does nothing when no output is configured.
func (c *Context) WriteMetrics() error {
	if c.Settings.MetricsOutput == "" {
		return nil
	}
	return metrics.WriteTextfile(c.Settings.MetricsOutput, c.Registry, c.Logger)
}
