package configuration

import (
	"log/slog"
	"os"
	"sync"

	"hiero-solo/pkg/data/backend"
)

// Provider hands out config builders and holds the registered
// application-wide Config.
type Provider struct {
	logger   *slog.Logger
	recorder Recorder
	environ  func() []string

	mu     sync.RWMutex
	config *Config
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithRecorder sets the recorder passed to every built Config.
func WithRecorder(r Recorder) ProviderOption {
	return func(p *Provider) { p.recorder = r }
}

// WithEnviron replaces os.Environ as the source of environment variables.
func WithEnviron(environ func() []string) ProviderOption {
	return func(p *Provider) { p.environ = environ }
}

// NewProvider creates a provider.
func NewProvider(logger *slog.Logger, opts ...ProviderOption) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		logger:  logger,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Builder returns a new builder bound to the provider.
func (p *Provider) Builder() *Builder {
	return &Builder{provider: p}
}

// Register makes cfg the application-wide Config. Registering while
// another Config is registered is an error.
func (p *Provider) Register(cfg *Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config != nil {
		return &ConfigurationError{Key: cfg.Prefix(), Message: "a configuration is already registered"}
	}
	p.config = cfg
	return nil
}

// Config returns the registered Config.
func (p *Provider) Config() (*Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.config == nil {
		return nil, &UnloadedConfigError{Message: "no configuration has been registered"}
	}
	return p.config, nil
}

// Release forgets the registered Config.
func (p *Provider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = nil
}

func (p *Provider) environmentSource(prefix string, logger *slog.Logger) ConfigSource {
	environ := os.Environ
	if p != nil && p.environ != nil {
		environ = p.environ
	}
	return NewEnvironmentConfigSourceFrom(backend.NewEnvironmentStorageBackendFrom(prefix, environ), logger)
}
