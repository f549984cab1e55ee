package providers

import (
	"context"

	"github.com/forge-ai/promptable/config"
)

// AnthropicProvider implements Provider for Anthropic's Messages API.
type AnthropicProvider struct {
	base
}

func NewAnthropicProvider(cfg *config.Config) *AnthropicProvider {
	return &AnthropicProvider{base: newBase(config.Anthropic, cfg)}
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Text *string `json:"text"`
	} `json:"content"`
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (string, bool) {
	body := anthropicRequest{
		Model:       req.Model,
		Messages:    userMessage(req.Prompt),
		Temperature: req.Temperature,
		MaxTokens:   anthropicMaxTok,
	}
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var out anthropicResponse
	err := p.post(ctx, p.baseURL+"/messages", headers, body, &out, nestedMessage)

	var text *string
	if len(out.Content) > 0 {
		text = out.Content[0].Text
	}
	return p.result(text, err)
}
