package providers

import (
	"context"
	"os"
)

const ai21BaseURL = "https://api.ai21.com/studio/v1"

type ai21Provider struct {
	api     *apiClient
	baseURL string
}

func newAI21() *ai21Provider {
	return &ai21Provider{api: newAPIClient(), baseURL: ai21BaseURL}
}

func (p *ai21Provider) ID() ProviderID {
	return ProviderAI21
}

func (p *ai21Provider) Setup() error {
	if os.Getenv("AI21_API_KEY") == "" {
		return NewModelError("AI21_API_KEY is not set")
	}
	return nil
}

func (p *ai21Provider) Test(ctx context.Context) error {
	llm := p.LLM("jamba-mini")
	_, err := Retry(ctx, func(ctx context.Context) (*Generation, error) {
		return llm.Generate(ctx, "Hello", WithMaxTokens(1))
	}, nil)
	return err
}

func (p *ai21Provider) LLM(model string) LLM {
	return &ai21LLM{p: p, model: model}
}

func (p *ai21Provider) Embedder(string) Embedder {
	return unsupportedEmbedder{id: ProviderAI21}
}

type ai21LLM struct {
	p     *ai21Provider
	model string
}

func (l *ai21LLM) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*Generation, error) {
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
		bearer(os.Getenv("AI21_API_KEY")), body, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &ModelError{Message: "response contained no choices", RequestID: out.ID}
	}

	return &Generation{
		Text:      out.Choices[0].Message.Content,
		Model:     l.model,
		Provider:  ProviderAI21,
		RequestID: out.ID,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
		},
	}, nil
}
