package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/forge-ai/promptable/config"
)

// AzureOpenAIProvider implements Provider for Azure-hosted OpenAI
// deployments. The deployment in the URL selects the model, so the body
// carries no model field.
type AzureOpenAIProvider struct {
	base
	apiVersion string
	deployment string
}

// NewAzureOpenAIProvider fails with ErrConfiguration when no Azure base URL
// is configured; Azure has no public default endpoint.
func NewAzureOpenAIProvider(cfg *config.Config) (*AzureOpenAIProvider, error) {
	b := newBase(config.AzureOpenAI, cfg)
	if b.baseURL == "" {
		return nil, fmt.Errorf("%w: azure_openai requires a base URL (e.g. https://your-resource.openai.azure.com)", ErrConfiguration)
	}
	return &AzureOpenAIProvider{
		base:       b,
		apiVersion: cfg.AzureAPIVersion(),
		deployment: cfg.Azure.DeploymentName,
	}, nil
}

func (p *AzureOpenAIProvider) Generate(ctx context.Context, req Request) (string, bool) {
	deployment := p.deployment
	if deployment == "" {
		deployment = req.Model
	}
	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.baseURL, url.PathEscape(deployment), url.QueryEscape(p.apiVersion))

	body := chatRequest{
		Messages:    userMessage(req.Prompt),
		Temperature: req.Temperature,
		MaxTokens:   defaultMaxTok,
	}
	headers := map[string]string{"api-key": p.apiKey}

	var out chatResponse
	err := p.post(ctx, endpoint, headers, body, &out, nestedMessage)
	return p.result(out.text(), err)
}
