package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Provider       string              `yaml:"provider"`
	APIKey         string              `yaml:"api_key"`
	DefaultModel   string              `yaml:"default_model"`
	TimeoutSeconds int                 `yaml:"timeout"`
	OpenAI         *ProviderSettings   `yaml:"openai"`
	Anthropic      *ProviderSettings   `yaml:"anthropic"`
	Gemini         *ProviderSettings   `yaml:"gemini"`
	Cohere         *ProviderSettings   `yaml:"cohere"`
	Azure          *AzureSettings      `yaml:"azure_openai"`
	Mistral        *ProviderSettings   `yaml:"mistral"`
	OpenRouter     *OpenRouterSettings `yaml:"openrouter"`
}

// LoadFile overlays the YAML document at path onto c. Only fields present in
// the document replace the current values.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&c.Provider, fc.Provider)
	overlay(&c.APIKey, fc.APIKey)
	overlay(&c.DefaultModel, fc.DefaultModel)
	if fc.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	overlaySettings(&c.OpenAI, fc.OpenAI)
	overlaySettings(&c.Anthropic, fc.Anthropic)
	overlaySettings(&c.Gemini, fc.Gemini)
	overlaySettings(&c.Cohere, fc.Cohere)
	overlaySettings(&c.Mistral, fc.Mistral)
	if a := fc.Azure; a != nil {
		overlay(&c.Azure.APIKey, a.APIKey)
		overlay(&c.Azure.BaseURL, a.BaseURL)
		overlay(&c.Azure.APIVersion, a.APIVersion)
		overlay(&c.Azure.DeploymentName, a.DeploymentName)
	}
	if o := fc.OpenRouter; o != nil {
		overlay(&c.OpenRouter.APIKey, o.APIKey)
		overlay(&c.OpenRouter.BaseURL, o.BaseURL)
		overlay(&c.OpenRouter.AppName, o.AppName)
		overlay(&c.OpenRouter.SiteURL, o.SiteURL)
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlaySettings(dst *ProviderSettings, src *ProviderSettings) {
	if src == nil {
		return
	}
	overlay(&dst.APIKey, src.APIKey)
	overlay(&dst.BaseURL, src.BaseURL)
}
