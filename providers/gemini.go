package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/forge-ai/promptable/config"
)

// GeminiProvider implements Provider for Google's generateContent API. The
// key travels as a query parameter rather than a header.
type GeminiProvider struct {
	base
}

func NewGeminiProvider(cfg *config.Config) *GeminiProvider {
	return &GeminiProvider{base: newBase(config.Gemini, cfg)}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, bool) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, url.PathEscape(req.Model), url.QueryEscape(p.apiKey))
	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: defaultMaxTok,
		},
	}

	var out geminiResponse
	err := p.post(ctx, endpoint, nil, body, &out, nestedMessage)

	var text *string
	if len(out.Candidates) > 0 && len(out.Candidates[0].Content.Parts) > 0 {
		text = out.Candidates[0].Content.Parts[0].Text
	}
	return p.result(text, err)
}
