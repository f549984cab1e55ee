package providers

import (
	"context"

	"github.com/forge-ai/promptable/config"
)

// MistralProvider implements Provider for Mistral's OpenAI-compatible chat API.
type MistralProvider struct {
	base
}

func NewMistralProvider(cfg *config.Config) *MistralProvider {
	return &MistralProvider{base: newBase(config.Mistral, cfg)}
}

func (p *MistralProvider) Generate(ctx context.Context, req Request) (string, bool) {
	body := chatRequest{
		Model:       req.Model,
		Messages:    userMessage(req.Prompt),
		Temperature: req.Temperature,
		MaxTokens:   defaultMaxTok,
	}
	var out chatResponse
	err := p.post(ctx, p.baseURL+"/chat/completions", p.bearer(), body, &out, flatMessage)
	return p.result(out.text(), err)
}
