package providers

import (
	"context"
	"os"
)

const cohereBaseURL = "https://api.cohere.ai/v1"

type cohereProvider struct {
	api     *apiClient
	baseURL string
}

func newCohere() *cohereProvider {
	return &cohereProvider{api: newAPIClient(), baseURL: cohereBaseURL}
}

func (p *cohereProvider) ID() ProviderID {
	return ProviderCohere
}

func (p *cohereProvider) Setup() error {
	if os.Getenv("COHERE_API_KEY") == "" {
		return NewModelError("COHERE_API_KEY is not set")
	}
	return nil
}

func (p *cohereProvider) Test(ctx context.Context) error {
	llm := p.LLM("command-r")
	_, err := Retry(ctx, func(ctx context.Context) (*Generation, error) {
		return llm.Generate(ctx, "Hello", WithMaxTokens(1))
	}, nil)
	return err
}

func (p *cohereProvider) LLM(model string) LLM {
	return &cohereLLM{p: p, model: model}
}

func (p *cohereProvider) Embedder(model string) Embedder {
	return &cohereEmbedder{p: p, model: model}
}

type cohereLLM struct {
	p     *cohereProvider
	model string
}

func (l *cohereLLM) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*Generation, error) {
	cfg := newGenerateConfig(opts)

	body := map[string]any{
		"model":   l.model,
		"message": prompt,
	}
	if cfg.maxTokens > 0 {
		body["max_tokens"] = cfg.maxTokens
	}
	if cfg.temperature >= 0 {
		body["temperature"] = cfg.temperature
	}

	var out struct {
		Text       string `json:"text"`
		GenerateID string `json:"generation_id"`
		Meta       struct {
			BilledUnits struct {
				InputTokens  int `json:"input_tokens"`
				OutputTokens int `json:"output_tokens"`
			} `json:"billed_units"`
		} `json:"meta"`
	}
	err := l.p.api.postJSON(ctx, l.p.baseURL+"/chat",
		bearer(os.Getenv("COHERE_API_KEY")), body, &out)
	if err != nil {
		return nil, err
	}

	return &Generation{
		Text:      out.Text,
		Model:     l.model,
		Provider:  ProviderCohere,
		RequestID: out.GenerateID,
		Usage: Usage{
			PromptTokens:     out.Meta.BilledUnits.InputTokens,
			CompletionTokens: out.Meta.BilledUnits.OutputTokens,
		},
	}, nil
}

type cohereEmbedder struct {
	p     *cohereProvider
	model string
}

func (e *cohereEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := map[string]any{
		"model":      e.model,
		"texts":      texts,
		"input_type": "search_document",
	}

	var out struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	err := e.p.api.postJSON(ctx, e.p.baseURL+"/embed",
		bearer(os.Getenv("COHERE_API_KEY")), body, &out)
	if err != nil {
		return nil, err
	}
	return out.Embeddings, nil
}
