package config

import "strings"

var synonyms = map[string]string{
	"openai":       OpenAI,
	"anthropic":    Anthropic,
	"claude":       Anthropic,
	"gemini":       Gemini,
	"google":       Gemini,
	"cohere":       Cohere,
	"azure_openai": AzureOpenAI,
	"azure":        AzureOpenAI,
	"mistral":      Mistral,
	"openrouter":   OpenRouter,
}

// ParseProvider maps an identifier or one of its synonyms to the canonical
// provider id. Case, surrounding space, a leading ':' and '-' separators are
// ignored, so ":Azure-OpenAI" resolves to "azure_openai".
func ParseProvider(id string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	key = strings.TrimPrefix(key, ":")
	key = strings.ReplaceAll(key, "-", "_")
	p, ok := synonyms[key]
	return p, ok
}

// Providers lists the canonical ids in their fixed order.
func Providers() []string {
	return []string{OpenAI, Anthropic, Gemini, Cohere, AzureOpenAI, Mistral, OpenRouter}
}
