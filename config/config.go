// Package config holds provider credentials, base URLs and model defaults,
// and resolves the effective settings for the active provider.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Canonical provider identifiers.
const (
	OpenAI      = "openai"
	Anthropic   = "anthropic"
	Gemini      = "gemini"
	Cohere      = "cohere"
	AzureOpenAI = "azure_openai"
	Mistral     = "mistral"
	OpenRouter  = "openrouter"
)

const (
	DefaultProvider    = OpenAI
	DefaultModel       = "gpt-4o-mini"
	DefaultTimeout     = 30 * time.Second
	DefaultAzureAPI    = "2024-02-15-preview"
	azureFallbackModel = "gpt-4"
)

var defaultBaseURLs = map[string]string{
	OpenAI:     "https://api.openai.com/v1",
	Anthropic:  "https://api.anthropic.com/v1",
	Gemini:     "https://generativelanguage.googleapis.com/v1beta",
	Cohere:     "https://api.cohere.ai/v1",
	Mistral:    "https://api.mistral.ai/v1",
	OpenRouter: "https://openrouter.ai/api/v1",
}

var defaultModels = map[string]string{
	OpenAI:     "gpt-4o-mini",
	Anthropic:  "claude-3-5-sonnet-20241022",
	Gemini:     "gemini-pro",
	Cohere:     "command",
	Mistral:    "mistral-small-latest",
	OpenRouter: "openai/gpt-3.5-turbo",
}

type ProviderSettings struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type AzureSettings struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	APIVersion     string `yaml:"api_version"`
	DeploymentName string `yaml:"deployment_name"`
}

type OpenRouterSettings struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	AppName string `yaml:"app_name"`
	SiteURL string `yaml:"site_url"`
}

// Config is mutated freely before the first generation; adapters copy what
// they need at construction and never see later changes.
type Config struct {
	Provider     string
	APIKey       string
	DefaultModel string
	Timeout      time.Duration
	Logger       zerolog.Logger

	OpenAI     ProviderSettings
	Anthropic  ProviderSettings
	Gemini     ProviderSettings
	Cohere     ProviderSettings
	Azure      AzureSettings
	Mistral    ProviderSettings
	OpenRouter OpenRouterSettings
}

func New() *Config {
	return &Config{
		Provider:     DefaultProvider,
		DefaultModel: DefaultModel,
		Timeout:      DefaultTimeout,
		Logger:       log.Logger,
		Azure:        AzureSettings{APIVersion: DefaultAzureAPI},
	}
}

// FromEnv returns the defaults overlaid with whatever the environment sets.
// OPENAI_API_KEY doubles as the generic fallback key.
func FromEnv() *Config {
	c := New()
	c.Provider = env("PROMPTABLE_PROVIDER", c.Provider)
	c.DefaultModel = env("PROMPTABLE_DEFAULT_MODEL", c.DefaultModel)
	c.Timeout = time.Duration(envInt("PROMPTABLE_TIMEOUT", int(c.Timeout/time.Second))) * time.Second
	c.APIKey = env("OPENAI_API_KEY", "")

	c.OpenAI.BaseURL = env("OPENAI_BASE_URL", "")
	c.Anthropic = ProviderSettings{APIKey: env("ANTHROPIC_API_KEY", ""), BaseURL: env("ANTHROPIC_BASE_URL", "")}
	c.Gemini = ProviderSettings{APIKey: env("GEMINI_API_KEY", ""), BaseURL: env("GEMINI_BASE_URL", "")}
	c.Cohere = ProviderSettings{APIKey: env("COHERE_API_KEY", ""), BaseURL: env("COHERE_BASE_URL", "")}
	c.Mistral = ProviderSettings{APIKey: env("MISTRAL_API_KEY", ""), BaseURL: env("MISTRAL_BASE_URL", "")}
	c.Azure = AzureSettings{
		APIKey:         env("AZURE_OPENAI_API_KEY", ""),
		BaseURL:        env("AZURE_OPENAI_BASE_URL", ""),
		APIVersion:     env("AZURE_OPENAI_API_VERSION", DefaultAzureAPI),
		DeploymentName: env("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
	}
	c.OpenRouter = OpenRouterSettings{
		APIKey:  env("OPENROUTER_API_KEY", ""),
		BaseURL: env("OPENROUTER_BASE_URL", ""),
		AppName: env("OPENROUTER_APP_NAME", ""),
		SiteURL: env("OPENROUTER_SITE_URL", ""),
	}
	return c
}

// EffectiveAPIKey returns the provider-specific key, or the generic key when
// none is set. Synonyms are accepted.
func (c *Config) EffectiveAPIKey(provider string) string {
	if k := c.settings(provider).APIKey; k != "" {
		return k
	}
	return c.APIKey
}

// EffectiveBaseURL returns the configured base URL or the vendor default.
// Azure has no default, so an unset Azure URL yields "".
func (c *Config) EffectiveBaseURL(provider string) string {
	id, _ := ParseProvider(provider)
	if u := c.settings(id).BaseURL; u != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultBaseURLs[id]
}

// ModelForProvider returns the canonical default model of the active
// provider. DefaultModel is only consulted for unrecognised providers.
func (c *Config) ModelForProvider() string {
	id, ok := ParseProvider(c.Provider)
	if !ok {
		return c.DefaultModel
	}
	if id == AzureOpenAI {
		if c.Azure.DeploymentName != "" {
			return c.Azure.DeploymentName
		}
		return azureFallbackModel
	}
	return defaultModels[id]
}

func (c *Config) AzureAPIVersion() string {
	if c.Azure.APIVersion != "" {
		return c.Azure.APIVersion
	}
	return DefaultAzureAPI
}

func (c *Config) settings(provider string) ProviderSettings {
	id, _ := ParseProvider(provider)
	switch id {
	case OpenAI:
		return c.OpenAI
	case Anthropic:
		return c.Anthropic
	case Gemini:
		return c.Gemini
	case Cohere:
		return c.Cohere
	case AzureOpenAI:
		return ProviderSettings{APIKey: c.Azure.APIKey, BaseURL: c.Azure.BaseURL}
	case Mistral:
		return c.Mistral
	case OpenRouter:
		return ProviderSettings{APIKey: c.OpenRouter.APIKey, BaseURL: c.OpenRouter.BaseURL}
	}
	return ProviderSettings{}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, _ := strconv.Atoi(v)
		if n > 0 {
			return n
		}
	}
	return def
}
