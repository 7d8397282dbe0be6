package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

const azureOpenAIAPIVersion = "2024-02-01"

// azureOpenAIProvider talks to an Azure OpenAI resource. The resource
// endpoint comes from AZURE_OPENAI_ENDPOINT and the model argument names the
// deployment within that resource.
type azureOpenAIProvider struct {
	api *apiClient
}

func newAzureOpenAI() *azureOpenAIProvider {
	return &azureOpenAIProvider{api: newAPIClient()}
}

func (p *azureOpenAIProvider) ID() ProviderID {
	return ProviderAzureOpenAI
}

func (p *azureOpenAIProvider) Setup() error {
	if os.Getenv("AZURE_OPENAI_ENDPOINT") == "" {
		return NewModelError("AZURE_OPENAI_ENDPOINT is not set")
	}
	if os.Getenv("AZURE_OPENAI_API_KEY") == "" {
		return NewModelError("AZURE_OPENAI_API_KEY is not set")
	}
	return nil
}

func (p *azureOpenAIProvider) Test(ctx context.Context) error {
	deployment := os.Getenv("AZURE_OPENAI_TEST_DEPLOYMENT")
	if deployment == "" {
		deployment = "gpt-4o-mini"
	}
	llm := p.LLM(deployment)
	_, err := Retry(ctx, func(ctx context.Context) (*Generation, error) {
		return llm.Generate(ctx, "Hello", WithMaxTokens(1))
	}, nil)
	return err
}

func (p *azureOpenAIProvider) LLM(model string) LLM {
	return &azureOpenAILLM{p: p, deployment: model}
}

func (p *azureOpenAIProvider) Embedder(model string) Embedder {
	return &azureOpenAIEmbedder{p: p, deployment: model}
}

func (p *azureOpenAIProvider) deploymentURL(deployment, operation string) string {
	endpoint := strings.TrimSuffix(os.Getenv("AZURE_OPENAI_ENDPOINT"), "/")
	return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		endpoint, deployment, operation, azureOpenAIAPIVersion)
}

func azureHeader() http.Header {
	h := http.Header{}
	h.Set("api-key", os.Getenv("AZURE_OPENAI_API_KEY"))
	return h
}

type azureOpenAILLM struct {
	p          *azureOpenAIProvider
	deployment string
}

func (l *azureOpenAILLM) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*Generation, error) {
	cfg := newGenerateConfig(opts)

	body := map[string]any{
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
	err := l.p.api.postJSON(ctx, l.p.deploymentURL(l.deployment, "chat/completions"),
		azureHeader(), body, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &ModelError{Message: "response contained no choices", RequestID: out.ID}
	}

	return &Generation{
		Text:      out.Choices[0].Message.Content,
		Model:     l.deployment,
		Provider:  ProviderAzureOpenAI,
		RequestID: out.ID,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
		},
	}, nil
}

type azureOpenAIEmbedder struct {
	p          *azureOpenAIProvider
	deployment string
}

func (e *azureOpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := map[string]any{"input": texts}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	err := e.p.api.postJSON(ctx, e.p.deploymentURL(e.deployment, "embeddings"),
		azureHeader(), body, &out)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
