package providers

import (
	"context"
	"os"
)

const openAIBaseURL = "https://api.openai.com/v1"

type openAIProvider struct {
	api     *apiClient
	baseURL string
}

func newOpenAI() *openAIProvider {
	return &openAIProvider{api: newAPIClient(), baseURL: openAIBaseURL}
}

func (p *openAIProvider) ID() ProviderID {
	return ProviderOpenAI
}

func (p *openAIProvider) Setup() error {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return NewModelError("OPENAI_API_KEY is not set")
	}
	return nil
}

func (p *openAIProvider) Test(ctx context.Context) error {
	llm := p.LLM("gpt-4o-mini")
	_, err := Retry(ctx, func(ctx context.Context) (*Generation, error) {
		return llm.Generate(ctx, "Hello", WithMaxTokens(1))
	}, nil)
	return err
}

func (p *openAIProvider) LLM(model string) LLM {
	return &openAILLM{p: p, model: model}
}

func (p *openAIProvider) Embedder(model string) Embedder {
	return &openAIEmbedder{p: p, model: model}
}

type openAILLM struct {
	p     *openAIProvider
	model string
}

func (l *openAILLM) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*Generation, error) {
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
		bearer(os.Getenv("OPENAI_API_KEY")), body, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &ModelError{Message: "response contained no choices", RequestID: out.ID}
	}

	return &Generation{
		Text:      out.Choices[0].Message.Content,
		Model:     l.model,
		Provider:  ProviderOpenAI,
		RequestID: out.ID,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
		},
	}, nil
}

type openAIEmbedder struct {
	p     *openAIProvider
	model string
}

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := map[string]any{"model": e.model, "input": texts}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	err := e.p.api.postJSON(ctx, e.p.baseURL+"/embeddings",
		bearer(os.Getenv("OPENAI_API_KEY")), body, &out)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
