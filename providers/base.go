package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/forge-ai/promptable/config"
	"github.com/forge-ai/promptable/metrics"
	"github.com/rs/zerolog"
)

const (
	anthropicVersion = "2023-06-01"
	anthropicMaxTok  = 4096
	defaultMaxTok    = 2048
)

// base is the state every adapter snapshots from the configuration at
// construction time.
type base struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func newBase(name string, cfg *config.Config) base {
	return base{
		name:    name,
		apiKey:  cfg.EffectiveAPIKey(name),
		baseURL: cfg.EffectiveBaseURL(name),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

func (b *base) Name() string { return b.name }

// messageFunc pulls the vendor's error message out of an error body.
type messageFunc func(raw []byte) string

// post sends body as JSON and decodes a successful response into out.
func (b *base) post(ctx context.Context, url string, headers map[string]string, body any, out any, errMsg messageFunc) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", b.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", b.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	metrics.GenerationLatency.WithLabelValues(b.name).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s request: %w", b.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", b.name, err)
	}

	if resp.StatusCode >= 400 {
		msg := errMsg(raw)
		if msg == "" {
			msg = "Unknown error"
		}
		return &APIError{Provider: b.name, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", b.name, err)
	}
	return nil
}

// result turns the outcome of post plus the extracted text into the
// (text, ok) pair returned by Generate. Errors are logged exactly once.
func (b *base) result(text *string, err error) (string, bool) {
	if err != nil {
		b.logger.Error().Err(err).Str("provider", b.name).Msg("generation failed")
		metrics.GenerationsTotal.WithLabelValues(b.name, metrics.OutcomeError).Inc()
		return "", false
	}
	if text == nil {
		metrics.GenerationsTotal.WithLabelValues(b.name, metrics.OutcomeEmpty).Inc()
		return "", false
	}
	metrics.GenerationsTotal.WithLabelValues(b.name, metrics.OutcomeOK).Inc()
	return *text, true
}

func (b *base) bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + b.apiKey}
}

// ── Shared wire shapes ───────────────────────────────────────────────────────

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func userMessage(prompt string) []chatMessage {
	return []chatMessage{{Role: "user", Content: prompt}}
}

// chatRequest is the OpenAI-style chat body shared by OpenAI, Azure,
// Mistral and OpenRouter.
type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (r *chatResponse) text() *string {
	if len(r.Choices) == 0 {
		return nil
	}
	return r.Choices[0].Message.Content
}

// nestedMessage reads {"error": {"message": ...}}.
func nestedMessage(raw []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(raw, &e)
	return e.Error.Message
}

// flatMessage reads {"message": ...}.
func flatMessage(raw []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &e)
	return e.Message
}
