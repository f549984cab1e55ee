// Package promptable renders prompt templates and sends them to the
// configured language-model provider.
//
// A Client owns one configuration and a lazily built provider adapter. The
// adapter is cached until ResetProvider is called, so configuration changes
// made after the first generation only take effect after a reset.
package promptable

import (
	"sync"

	"github.com/forge-ai/promptable/config"
	"github.com/forge-ai/promptable/providers"
	"github.com/forge-ai/promptable/templates"
)

// Factory builds the adapter for a provider id.
type Factory func(id string, cfg *config.Config) (providers.Provider, error)

type Client struct {
	cfg      *config.Config
	registry *templates.Registry
	factory  Factory

	mu       sync.Mutex
	provider providers.Provider
}

type Option func(*Client)

// WithRegistry makes UseTemplate resolve names against r instead of
// templates.Default.
func WithRegistry(r *templates.Registry) Option {
	return func(c *Client) { c.registry = r }
}

func WithFactory(f Factory) Option {
	return func(c *Client) { c.factory = f }
}

func New(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = config.New()
	}
	c := &Client{
		cfg:      cfg,
		registry: templates.Default,
		factory:  providers.ForProvider,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Config() *config.Config { return c.cfg }

func (c *Client) Registry() *templates.Registry { return c.registry }

// Provider returns the cached adapter, building it on first use.
func (c *Client) Provider() (providers.Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider != nil {
		return c.provider, nil
	}
	p, err := c.factory(c.cfg.Provider, c.cfg)
	if err != nil {
		return nil, err
	}
	c.provider = p
	return p, nil
}

// ResetProvider drops the cached adapter; the next generation rebuilds it
// from the current configuration.
func (c *Client) ResetProvider() {
	c.mu.Lock()
	c.provider = nil
	c.mu.Unlock()
}
