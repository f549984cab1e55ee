package providers

import (
	"context"

	"github.com/forge-ai/promptable/config"
)

// OpenRouterProvider implements Provider for OpenRouter's API.
// OpenRouter uses OpenAI-compatible API format.
type OpenRouterProvider struct {
	base
	appName string
	siteURL string
}

func NewOpenRouterProvider(cfg *config.Config) *OpenRouterProvider {
	return &OpenRouterProvider{
		base:    newBase(config.OpenRouter, cfg),
		appName: cfg.OpenRouter.AppName,
		siteURL: cfg.OpenRouter.SiteURL,
	}
}

func (p *OpenRouterProvider) Generate(ctx context.Context, req Request) (string, bool) {
	headers := p.bearer()
	// attribution headers, only when configured
	if p.siteURL != "" {
		headers["HTTP-Referer"] = p.siteURL
	}
	if p.appName != "" {
		headers["X-Title"] = p.appName
	}

	body := chatRequest{
		Model:       req.Model,
		Messages:    userMessage(req.Prompt),
		Temperature: req.Temperature,
		MaxTokens:   defaultMaxTok,
	}
	var out chatResponse
	err := p.post(ctx, p.baseURL+"/chat/completions", headers, body, &out, nestedMessage)
	return p.result(out.text(), err)
}
