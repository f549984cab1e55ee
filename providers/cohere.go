package providers

import (
	"context"

	"github.com/forge-ai/promptable/config"
)

// CohereProvider implements Provider for Cohere's single-prompt generate API.
type CohereProvider struct {
	base
}

func NewCohereProvider(cfg *config.Config) *CohereProvider {
	return &CohereProvider{base: newBase(config.Cohere, cfg)}
}

type cohereRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type cohereResponse struct {
	Generations []struct {
		Text *string `json:"text"`
	} `json:"generations"`
}

func (p *CohereProvider) Generate(ctx context.Context, req Request) (string, bool) {
	body := cohereRequest{
		Model:       req.Model,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		MaxTokens:   defaultMaxTok,
	}

	var out cohereResponse
	err := p.post(ctx, p.baseURL+"/generate", p.bearer(), body, &out, flatMessage)

	var text *string
	if len(out.Generations) > 0 {
		text = out.Generations[0].Text
	}
	return p.result(text, err)
}
