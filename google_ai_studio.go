package providers

import (
	"context"
	"fmt"
	"os"
)

const googleAIStudioBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type googleAIStudioProvider struct {
	api     *apiClient
	baseURL string
}

func newGoogleAIStudio() *googleAIStudioProvider {
	return &googleAIStudioProvider{api: newAPIClient(), baseURL: googleAIStudioBaseURL}
}

func (p *googleAIStudioProvider) ID() ProviderID {
	return ProviderGoogleAIStudio
}

func (p *googleAIStudioProvider) Setup() error {
	if os.Getenv("GOOGLE_AI_STUDIO_API_KEY") == "" {
		return NewModelError("GOOGLE_AI_STUDIO_API_KEY is not set")
	}
	return nil
}

func (p *googleAIStudioProvider) Test(ctx context.Context) error {
	llm := p.LLM("gemini-1.5-flash")
	_, err := Retry(ctx, func(ctx context.Context) (*Generation, error) {
		return llm.Generate(ctx, "Hello", WithMaxTokens(1))
	}, nil)
	return err
}

func (p *googleAIStudioProvider) LLM(model string) LLM {
	return &googleAIStudioLLM{p: p, model: model}
}

func (p *googleAIStudioProvider) Embedder(model string) Embedder {
	return &googleAIStudioEmbedder{p: p, model: model}
}

// modelURL builds the per-model operation URL. Google AI Studio
// authenticates with a query parameter rather than a header.
func (p *googleAIStudioProvider) modelURL(model, operation string) string {
	return fmt.Sprintf("%s/models/%s:%s?key=%s",
		p.baseURL, model, operation, os.Getenv("GOOGLE_AI_STUDIO_API_KEY"))
}

type googleAIStudioLLM struct {
	p     *googleAIStudioProvider
	model string
}

func (l *googleAIStudioLLM) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*Generation, error) {
	cfg := newGenerateConfig(opts)

	generationConfig := map[string]any{}
	if cfg.maxTokens > 0 {
		generationConfig["maxOutputTokens"] = cfg.maxTokens
	}
	if cfg.temperature >= 0 {
		generationConfig["temperature"] = cfg.temperature
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	if len(generationConfig) > 0 {
		body["generationConfig"] = generationConfig
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
	}
	err := l.p.api.postJSON(ctx, l.p.modelURL(l.model, "generateContent"), nil, body, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, NewModelError("response contained no candidates")
	}

	return &Generation{
		Text:     out.Candidates[0].Content.Parts[0].Text,
		Model:    l.model,
		Provider: ProviderGoogleAIStudio,
		Usage: Usage{
			PromptTokens:     out.UsageMetadata.PromptTokenCount,
			CompletionTokens: out.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}

type googleAIStudioEmbedder struct {
	p     *googleAIStudioProvider
	model string
}

func (e *googleAIStudioEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	requests := make([]map[string]any, len(texts))
	for i, text := range texts {
		requests[i] = map[string]any{
			"model":   "models/" + e.model,
			"content": map[string]any{"parts": []map[string]string{{"text": text}}},
		}
	}
	body := map[string]any{"requests": requests}

	var out struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	err := e.p.api.postJSON(ctx, e.p.modelURL(e.model, "batchEmbedContents"), nil, body, &out)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(out.Embeddings))
	for i, emb := range out.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
