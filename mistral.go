package providers

import (
	"context"
	"os"
)

const mistralBaseURL = "https://api.mistral.ai/v1"

type mistralProvider struct {
	api     *apiClient
	baseURL string
}

func newMistral() *mistralProvider {
	return &mistralProvider{api: newAPIClient(), baseURL: mistralBaseURL}
}

func (p *mistralProvider) ID() ProviderID {
	return ProviderMistral
}

func (p *mistralProvider) Setup() error {
	if os.Getenv("MISTRAL_API_KEY") == "" {
		return NewModelError("MISTRAL_API_KEY is not set")
	}
	return nil
}

func (p *mistralProvider) Test(ctx context.Context) error {
	llm := p.LLM("mistral-small-latest")
	_, err := Retry(ctx, func(ctx context.Context) (*Generation, error) {
		return llm.Generate(ctx, "Hello", WithMaxTokens(1))
	}, nil)
	return err
}

func (p *mistralProvider) LLM(model string) LLM {
	return &mistralLLM{p: p, model: model}
}

func (p *mistralProvider) Embedder(model string) Embedder {
	return &mistralEmbedder{p: p, model: model}
}

type mistralLLM struct {
	p     *mistralProvider
	model string
}

func (l *mistralLLM) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*Generation, error) {
	cfg := newGenerateConfig(opts)

	body := map[string]any{
		"model":    l.model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
	}
	if cfg.maxTokens > 0 {
		body["max_tokens"] = cfg.maxTokens
	}
	if cfg.temperature >= 0 {
		body["temperature"] = cfg.temperature
	}

	var out struct {
		ID      string `json:"id"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	err := l.p.api.postJSON(ctx, l.p.baseURL+"/chat/completions",
		bearer(os.Getenv("MISTRAL_API_KEY")), body, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &ModelError{Message: "response contained no choices", RequestID: out.ID}
	}

	return &Generation{
		Text:      out.Choices[0].Message.Content,
		Model:     l.model,
		Provider:  ProviderMistral,
		RequestID: out.ID,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
		},
	}, nil
}

type mistralEmbedder struct {
	p     *mistralProvider
	model string
}

func (e *mistralEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := map[string]any{"model": e.model, "input": texts}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	err := e.p.api.postJSON(ctx, e.p.baseURL+"/embeddings",
		bearer(os.Getenv("MISTRAL_API_KEY")), body, &out)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
