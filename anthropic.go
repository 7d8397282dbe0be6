package providers

import (
	"context"
	"net/http"
	"os"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
)

type anthropicProvider struct {
	api     *apiClient
	baseURL string
}

func newAnthropic() *anthropicProvider {
	return &anthropicProvider{api: newAPIClient(), baseURL: anthropicBaseURL}
}

func (p *anthropicProvider) ID() ProviderID {
	return ProviderAnthropic
}

func (p *anthropicProvider) Setup() error {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return NewModelError("ANTHROPIC_API_KEY is not set")
	}
	return nil
}

func (p *anthropicProvider) Test(ctx context.Context) error {
	llm := p.LLM("claude-3-5-haiku-latest")
	_, err := Retry(ctx, func(ctx context.Context) (*Generation, error) {
		return llm.Generate(ctx, "Hello", WithMaxTokens(1))
	}, nil)
	return err
}

func (p *anthropicProvider) LLM(model string) LLM {
	return &anthropicLLM{p: p, model: model}
}

func (p *anthropicProvider) Embedder(string) Embedder {
	return unsupportedEmbedder{id: ProviderAnthropic}
}

func anthropicHeader() http.Header {
	h := http.Header{}
	h.Set("x-api-key", os.Getenv("ANTHROPIC_API_KEY"))
	h.Set("anthropic-version", anthropicAPIVersion)
	return h
}

type anthropicLLM struct {
	p     *anthropicProvider
	model string
}

func (l *anthropicLLM) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*Generation, error) {
	cfg := newGenerateConfig(opts)

	// The messages API requires max_tokens.
	maxTokens := cfg.maxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	body := map[string]any{
		"model":      l.model,
		"max_tokens": maxTokens,
		"messages":   []map[string]string{{"role": "user", "content": prompt}},
	}
	if cfg.temperature >= 0 {
		body["temperature"] = cfg.temperature
	}

	var out struct {
		ID      string `json:"id"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	err := l.p.api.postJSON(ctx, l.p.baseURL+"/messages", anthropicHeader(), body, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Content) == 0 {
		return nil, &ModelError{Message: "response contained no content", RequestID: out.ID}
	}

	return &Generation{
		Text:      out.Content[0].Text,
		Model:     l.model,
		Provider:  ProviderAnthropic,
		RequestID: out.ID,
		Usage: Usage{
			PromptTokens:     out.Usage.InputTokens,
			CompletionTokens: out.Usage.OutputTokens,
		},
	}, nil
}
