package promptable

import (
	"sync"

	"github.com/forge-ai/promptable/config"
)

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Configure applies fn to the process-wide client's configuration, creating
// the client from the environment on first use. Call ResetClient afterwards
// if a provider was already built.
func Configure(fn func(*config.Config)) *Client {
	c := Default()
	if fn != nil {
		fn(c.cfg)
	}
	return c
}

// Default returns the process-wide client.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(config.FromEnv())
	}
	return defaultClient
}

// ResetClient drops the process-wide client's cached provider.
func ResetClient() {
	Default().ResetProvider()
}
