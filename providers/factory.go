package providers

import (
	"fmt"
	"strings"

	"github.com/forge-ai/promptable/config"
)

// ForProvider builds the adapter for id, which may be any accepted synonym
// ("claude", "google", "azure", ...). The adapter snapshots cfg.
func ForProvider(id string, cfg *config.Config) (Provider, error) {
	name, _ := config.ParseProvider(id)

	switch name {
	case config.OpenAI:
		return NewOpenAIProvider(cfg), nil
	case config.Anthropic:
		return NewAnthropicProvider(cfg), nil
	case config.Gemini:
		return NewGeminiProvider(cfg), nil
	case config.Cohere:
		return NewCohereProvider(cfg), nil
	case config.AzureOpenAI:
		p, err := NewAzureOpenAIProvider(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.Mistral:
		return NewMistralProvider(cfg), nil
	case config.OpenRouter:
		return NewOpenRouterProvider(cfg), nil
	}
	return nil, fmt.Errorf("%w: %s. supported providers: %s",
		ErrUnknownProvider, id, strings.Join(Available(), ", "))
}

// Available lists the canonical provider ids in a fixed order.
func Available() []string {
	return config.Providers()
}
