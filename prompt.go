package promptable

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forge-ai/promptable/providers"
	"github.com/forge-ai/promptable/templates"
)

const defaultTemperature = 0.7

var ErrTemplateNotFound = errors.New("template not found")

// Overrides adjusts a single generation. Zero values fall back to the
// client defaults.
type Overrides struct {
	Model       string           `json:"model,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Format      providers.Format `json:"format,omitempty"`
}

// Temperature is a convenience for filling Overrides.Temperature.
func Temperature(v float64) *float64 { return &v }

// Prompt binds a template to a client.
type Prompt struct {
	client   *Client
	template string
}

// Prompt returns a prompt for tmpl. An empty template renders as "".
func (c *Client) Prompt(tmpl string) *Prompt {
	return &Prompt{client: c, template: tmpl}
}

// UseTemplate looks name up in the client's registry.
func (c *Client) UseTemplate(name string) (*Prompt, error) {
	tmpl, ok := c.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'. available templates: %s",
			ErrTemplateNotFound, name, strings.Join(c.registry.List(), ", "))
	}
	return c.Prompt(tmpl), nil
}

func (p *Prompt) Template() string { return p.template }

func (p *Prompt) Render(vars map[string]any) string {
	return templates.Render(p.template, vars)
}

// Generate renders the prompt against vars and sends it to the client's
// provider. The returned error is only ever a provider construction error;
// generation failures come back as ok == false.
func (p *Prompt) Generate(ctx context.Context, vars map[string]any, o Overrides) (string, bool, error) {
	return p.client.Generate(ctx, p.template, vars, o)
}

// Generate renders tmpl against vars and sends it to the provider.
func (c *Client) Generate(ctx context.Context, tmpl string, vars map[string]any, o Overrides) (string, bool, error) {
	prompt := templates.Render(tmpl, vars)

	prov, err := c.Provider()
	if err != nil {
		return "", false, err
	}

	req := c.request(prompt, o)
	c.cfg.Logger.Info().
		Str("provider", prov.Name()).
		Str("model", req.Model).
		Int("prompt_len", len(prompt)).
		Msg("prompt rendered")

	text, ok := prov.Generate(ctx, req)
	return text, ok, nil
}

func (c *Client) request(prompt string, o Overrides) providers.Request {
	req := providers.Request{
		Prompt:      prompt,
		Model:       o.Model,
		Temperature: defaultTemperature,
		Format:      o.Format,
	}
	if req.Model == "" {
		req.Model = c.cfg.DefaultModel
	}
	if req.Model == "" {
		req.Model = c.cfg.ModelForProvider()
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if req.Format == "" {
		req.Format = providers.FormatText
	}
	return req
}
