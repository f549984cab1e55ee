package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/forge-ai/promptable/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type captured struct {
	mu     sync.Mutex
	hits   int
	path   string
	raw    string
	query  map[string][]string
	header http.Header
	body   map[string]any
}

func (c *captured) snapshot() (int, string, http.Header, map[string]any, map[string][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.path, c.header, c.body, c.query
}

func newServer(t *testing.T, status int, resp string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.hits++
		c.path = r.URL.Path
		c.raw = r.URL.EscapedPath()
		c.query = r.URL.Query()
		c.header = r.Header.Clone()
		c.body = nil
		_ = json.Unmarshal(raw, &c.body)
		c.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func testConfig(provider, baseURL string) (*config.Config, *bytes.Buffer) {
	var buf bytes.Buffer
	c := config.New()
	c.Provider = provider
	c.APIKey = "generic-key"
	c.Logger = zerolog.New(&buf)
	setBaseURL(c, provider, baseURL)
	return c, &buf
}

func setBaseURL(c *config.Config, provider, u string) {
	switch provider {
	case config.OpenAI:
		c.OpenAI.BaseURL = u
	case config.Anthropic:
		c.Anthropic.BaseURL = u
	case config.Gemini:
		c.Gemini.BaseURL = u
	case config.Cohere:
		c.Cohere.BaseURL = u
	case config.AzureOpenAI:
		c.Azure.BaseURL = u
	case config.Mistral:
		c.Mistral.BaseURL = u
	case config.OpenRouter:
		c.OpenRouter.BaseURL = u
	}
}

func errorLines(buf *bytes.Buffer) int {
	return strings.Count(buf.String(), `"level":"error"`)
}

func mustProvider(t *testing.T, id string, c *config.Config) Provider {
	t.Helper()
	p, err := ForProvider(id, c)
	require.NoError(t, err)
	return p
}

var chatOK = `{"choices":[{"message":{"content":"X"}}]}`

type vendorCase struct {
	id     string
	path   string
	resp   string
	key    func(h http.Header, q map[string][]string) string
	assert func(t *testing.T, body map[string]any)
}

func bearerKey(h http.Header, _ map[string][]string) string {
	return strings.TrimPrefix(h.Get("Authorization"), "Bearer ")
}

func chatBody(maxTokens bool, model bool) func(t *testing.T, body map[string]any) {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 1)
		msg := msgs[0].(map[string]any)
		require.Equal(t, "user", msg["role"])
		require.Equal(t, "Say hi", msg["content"])
		require.Equal(t, 0.7, body["temperature"])
		if model {
			require.Equal(t, "test-model", body["model"])
		} else {
			require.NotContains(t, body, "model")
		}
		if maxTokens {
			require.Equal(t, float64(2048), body["max_tokens"])
		} else {
			require.NotContains(t, body, "max_tokens")
		}
	}
}

var vendorCases = []vendorCase{
	{
		id:     config.OpenAI,
		path:   "/chat/completions",
		resp:   chatOK,
		key:    bearerKey,
		assert: chatBody(false, true),
	},
	{
		id:   config.Anthropic,
		path: "/messages",
		resp: `{"content":[{"type":"text","text":"X"}]}`,
		key:  func(h http.Header, _ map[string][]string) string { return h.Get("x-api-key") },
		assert: func(t *testing.T, body map[string]any) {
			require.Equal(t, "test-model", body["model"])
			require.Equal(t, float64(4096), body["max_tokens"])
			require.Equal(t, 0.7, body["temperature"])
			require.Len(t, body["messages"], 1)
		},
	},
	{
		id:   config.Gemini,
		path: "/models/test-model:generateContent",
		resp: `{"candidates":[{"content":{"parts":[{"text":"X"}]}}]}`,
		key:  func(_ http.Header, q map[string][]string) string { return first(q["key"]) },
		assert: func(t *testing.T, body map[string]any) {
			contents := body["contents"].([]any)
			parts := contents[0].(map[string]any)["parts"].([]any)
			require.Equal(t, "Say hi", parts[0].(map[string]any)["text"])
			gen := body["generationConfig"].(map[string]any)
			require.Equal(t, 0.7, gen["temperature"])
			require.Equal(t, float64(2048), gen["maxOutputTokens"])
			require.NotContains(t, body, "model")
		},
	},
	{
		id:   config.Cohere,
		path: "/generate",
		resp: `{"generations":[{"text":"X"}]}`,
		key:  bearerKey,
		assert: func(t *testing.T, body map[string]any) {
			require.Equal(t, "test-model", body["model"])
			require.Equal(t, "Say hi", body["prompt"])
			require.Equal(t, 0.7, body["temperature"])
			require.Equal(t, float64(2048), body["max_tokens"])
		},
	},
	{
		id:     config.AzureOpenAI,
		path:   "/openai/deployments/test-model/chat/completions",
		resp:   chatOK,
		key:    func(h http.Header, _ map[string][]string) string { return h.Get("api-key") },
		assert: chatBody(true, false),
	},
	{
		id:     config.Mistral,
		path:   "/chat/completions",
		resp:   chatOK,
		key:    bearerKey,
		assert: chatBody(true, true),
	},
	{
		id:     config.OpenRouter,
		path:   "/chat/completions",
		resp:   chatOK,
		key:    bearerKey,
		assert: chatBody(true, true),
	},
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func testRequest() Request {
	return Request{Prompt: "Say hi", Model: "test-model", Temperature: 0.7, Format: FormatText}
}

func TestGenerateSuccess(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(vc.id, func(t *testing.T) {
			srv, rec := newServer(t, http.StatusOK, vc.resp)
			cfg, logs := testConfig(vc.id, srv.URL)

			p := mustProvider(t, vc.id, cfg)
			text, ok := p.Generate(context.Background(), testRequest())
			require.True(t, ok)
			require.Equal(t, "X", text)
			require.Equal(t, 0, errorLines(logs))

			hits, path, header, body, query := rec.snapshot()
			require.Equal(t, 1, hits)
			require.Equal(t, vc.path, path)
			require.Equal(t, "application/json", header.Get("Content-Type"))
			require.Equal(t, "generic-key", vc.key(header, query))
			vc.assert(t, body)
		})
	}
}

func TestGenerateUsesProviderSpecificKey(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(vc.id, func(t *testing.T) {
			srv, rec := newServer(t, http.StatusOK, vc.resp)
			cfg, _ := testConfig(vc.id, srv.URL)
			switch vc.id {
			case config.OpenAI:
				cfg.OpenAI.APIKey = "specific"
			case config.Anthropic:
				cfg.Anthropic.APIKey = "specific"
			case config.Gemini:
				cfg.Gemini.APIKey = "specific"
			case config.Cohere:
				cfg.Cohere.APIKey = "specific"
			case config.AzureOpenAI:
				cfg.Azure.APIKey = "specific"
			case config.Mistral:
				cfg.Mistral.APIKey = "specific"
			case config.OpenRouter:
				cfg.OpenRouter.APIKey = "specific"
			}

			_, ok := mustProvider(t, vc.id, cfg).Generate(context.Background(), testRequest())
			require.True(t, ok)
			_, _, header, _, query := rec.snapshot()
			require.Equal(t, "specific", vc.key(header, query))
		})
	}
}

func TestGenerateVendorErrorIsLoggedOnce(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(vc.id, func(t *testing.T) {
			srv, _ := newServer(t, http.StatusUnauthorized, `{"error":{"message":"Invalid API key"},"message":"Invalid API key"}`)
			cfg, logs := testConfig(vc.id, srv.URL)

			text, ok := mustProvider(t, vc.id, cfg).Generate(context.Background(), testRequest())
			require.False(t, ok)
			require.Empty(t, text)
			require.Equal(t, 1, errorLines(logs))
			require.Contains(t, logs.String(), "Invalid API key")
		})
	}
}

func TestGenerateNonJSONErrorBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadGateway, "<html>bad gateway</html>")
	cfg, logs := testConfig(config.Mistral, srv.URL)

	_, ok := mustProvider(t, config.Mistral, cfg).Generate(context.Background(), testRequest())
	require.False(t, ok)
	require.Equal(t, 1, errorLines(logs))
	require.Contains(t, logs.String(), "Unknown error")
}

func TestGenerateTransportErrorIsLoggedOnce(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(vc.id, func(t *testing.T) {
			srv := httptest.NewServer(http.NotFoundHandler())
			url := srv.URL
			srv.Close()

			cfg, logs := testConfig(vc.id, url)
			text, ok := mustProvider(t, vc.id, cfg).Generate(context.Background(), testRequest())
			require.False(t, ok)
			require.Empty(t, text)
			require.Equal(t, 1, errorLines(logs))
		})
	}
}

func TestGenerateMalformedResponseIsLogged(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "not json")
	cfg, logs := testConfig(config.OpenAI, srv.URL)

	_, ok := mustProvider(t, config.OpenAI, cfg).Generate(context.Background(), testRequest())
	require.False(t, ok)
	require.Equal(t, 1, errorLines(logs))
}

func TestGenerateMissingPathIsSilent(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(vc.id, func(t *testing.T) {
			srv, _ := newServer(t, http.StatusOK, `{}`)
			cfg, logs := testConfig(vc.id, srv.URL)

			text, ok := mustProvider(t, vc.id, cfg).Generate(context.Background(), testRequest())
			require.False(t, ok)
			require.Empty(t, text)
			require.Equal(t, 0, errorLines(logs))
		})
	}
}

func TestGenerateEmptyTextIsStillText(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":""}}]}`)
	cfg, _ := testConfig(config.OpenAI, srv.URL)

	text, ok := mustProvider(t, config.OpenAI, cfg).Generate(context.Background(), testRequest())
	require.True(t, ok)
	require.Empty(t, text)
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	cfg, logs := testConfig(config.Anthropic, srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	_, ok := mustProvider(t, config.Anthropic, cfg).Generate(context.Background(), testRequest())
	require.False(t, ok)
	require.Equal(t, 1, errorLines(logs))
}

func TestFormatDoesNotChangeRequest(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, chatOK)
	cfg, _ := testConfig(config.OpenAI, srv.URL)
	p := mustProvider(t, config.OpenAI, cfg)

	req := testRequest()
	_, ok := p.Generate(context.Background(), req)
	require.True(t, ok)
	_, _, _, textBody, _ := rec.snapshot()

	req.Format = FormatJSON
	_, ok = p.Generate(context.Background(), req)
	require.True(t, ok)
	_, _, _, jsonBody, _ := rec.snapshot()

	require.Equal(t, textBody, jsonBody)
}

func TestAdapterSnapshotsConfiguration(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, chatOK)
	cfg, _ := testConfig(config.Mistral, srv.URL)
	p := mustProvider(t, config.Mistral, cfg)

	cfg.APIKey = "changed"
	cfg.Mistral.BaseURL = "http://127.0.0.1:1"

	_, ok := p.Generate(context.Background(), testRequest())
	require.True(t, ok)
	_, _, header, _, _ := rec.snapshot()
	require.Equal(t, "Bearer generic-key", header.Get("Authorization"))
}

func TestAzureRequiresBaseURL(t *testing.T) {
	cfg := config.New()
	cfg.APIKey = "k"

	_, err := NewAzureOpenAIProvider(cfg)
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = ForProvider("azure", cfg)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestAzureDeploymentRouting(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, chatOK)

	cfg, _ := testConfig(config.AzureOpenAI, srv.URL)
	cfg.Azure.DeploymentName = "my-deployment"
	cfg.Azure.APIVersion = "2023-12-01-preview"

	_, ok := mustProvider(t, "azure", cfg).Generate(context.Background(), testRequest())
	require.True(t, ok)
	_, path, _, _, query := rec.snapshot()
	require.Equal(t, "/openai/deployments/my-deployment/chat/completions", path)
	require.Equal(t, "2023-12-01-preview", first(query["api-version"]))

	cfg.Azure.DeploymentName = ""
	cfg.Azure.APIVersion = ""
	_, ok = mustProvider(t, "azure", cfg).Generate(context.Background(), testRequest())
	require.True(t, ok)
	_, path, _, _, query = rec.snapshot()
	require.Equal(t, "/openai/deployments/test-model/chat/completions", path)
	require.Equal(t, config.DefaultAzureAPI, first(query["api-version"]))
}

func (c *captured) escapedPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw
}

func TestModelPathSegmentIsEscaped(t *testing.T) {
	tests := []struct {
		id   string
		resp string
		want string
	}{
		{config.AzureOpenAI, chatOK, "/openai/deployments/team%2Fgpt-4%3Fx=1/chat/completions"},
		{config.Gemini, `{"candidates":[{"content":{"parts":[{"text":"X"}]}}]}`, "/models/team%2Fgemini%3Fx=1:generateContent"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			srv, rec := newServer(t, http.StatusOK, tt.resp)
			cfg, _ := testConfig(tt.id, srv.URL)

			req := testRequest()
			req.Model = "team/gpt-4?x=1"
			if tt.id == config.Gemini {
				req.Model = "team/gemini?x=1"
			}
			_, ok := mustProvider(t, tt.id, cfg).Generate(context.Background(), req)
			require.True(t, ok)
			require.Equal(t, tt.want, rec.escapedPath())
		})
	}
}

func TestOpenRouterAttributionHeaders(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, chatOK)
	cfg, _ := testConfig(config.OpenRouter, srv.URL)

	_, ok := mustProvider(t, config.OpenRouter, cfg).Generate(context.Background(), testRequest())
	require.True(t, ok)
	_, _, header, _, _ := rec.snapshot()
	require.Empty(t, header.Get("HTTP-Referer"))
	require.Empty(t, header.Get("X-Title"))

	cfg.OpenRouter.AppName = "MyApp"
	cfg.OpenRouter.SiteURL = "https://myapp.com"
	_, ok = mustProvider(t, config.OpenRouter, cfg).Generate(context.Background(), testRequest())
	require.True(t, ok)
	_, _, header, _, _ = rec.snapshot()
	require.Equal(t, "https://myapp.com", header.Get("HTTP-Referer"))
	require.Equal(t, "MyApp", header.Get("X-Title"))
}

func TestForProviderSynonyms(t *testing.T) {
	cfg := config.New()
	cfg.Azure.BaseURL = "https://test.openai.azure.com"

	tests := []struct {
		id   string
		want Provider
	}{
		{"openai", &OpenAIProvider{}},
		{"anthropic", &AnthropicProvider{}},
		{"claude", &AnthropicProvider{}},
		{"gemini", &GeminiProvider{}},
		{"google", &GeminiProvider{}},
		{"cohere", &CohereProvider{}},
		{"azure_openai", &AzureOpenAIProvider{}},
		{"azure", &AzureOpenAIProvider{}},
		{"mistral", &MistralProvider{}},
		{"openrouter", &OpenRouterProvider{}},
		{":Claude", &AnthropicProvider{}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, err := ForProvider(tt.id, cfg)
			require.NoError(t, err)
			require.IsType(t, tt.want, p)
		})
	}
}

func TestForProviderNames(t *testing.T) {
	cfg := config.New()
	cfg.Azure.BaseURL = "https://test.openai.azure.com"
	for _, id := range Available() {
		p, err := ForProvider(id, cfg)
		require.NoError(t, err)
		require.Equal(t, id, p.Name())
	}
}

func TestForProviderUnknown(t *testing.T) {
	_, err := ForProvider("llama", config.New())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownProvider))
	require.Contains(t, err.Error(), "llama")
	require.Contains(t, err.Error(), "openai, anthropic, gemini, cohere, azure_openai, mistral, openrouter")
}

func TestAvailable(t *testing.T) {
	require.Equal(t,
		[]string{"openai", "anthropic", "gemini", "cohere", "azure_openai", "mistral", "openrouter"},
		Available())
}
