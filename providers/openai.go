package providers

import (
	"context"

	"github.com/forge-ai/promptable/config"
)

// OpenAIProvider implements Provider for OpenAI's Chat Completions API.
type OpenAIProvider struct {
	base
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	return &OpenAIProvider{base: newBase(config.OpenAI, cfg)}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, bool) {
	body := chatRequest{
		Model:       req.Model,
		Messages:    userMessage(req.Prompt),
		Temperature: req.Temperature,
	}
	var out chatResponse
	err := p.post(ctx, p.baseURL+"/chat/completions", p.bearer(), body, &out, nestedMessage)
	return p.result(out.text(), err)
}
