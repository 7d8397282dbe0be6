package providers

import "context"

// LLM is a handle to one completion model on a specific provider, obtained
// from Provider.LLM. Implementations are safe for concurrent use.
type LLM interface {
	// Generate produces a completion for prompt. Remote failures are
	// reported as *ModelError so callers can drive Retry with them.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*Generation, error)
}

// Generation is a single completion result.
type Generation struct {
	Text      string
	Model     string
	Provider  ProviderID
	RequestID string
	Usage     Usage
}

// Usage reports token consumption for one call. Providers that don't report
// usage leave it zero.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

type generateConfig struct {
	maxTokens   int
	temperature float64
}

// GenerateOption adjusts a single Generate call.
type GenerateOption func(*generateConfig)

// WithMaxTokens caps the number of tokens the model may produce.
func WithMaxTokens(n int) GenerateOption {
	return func(c *generateConfig) {
		c.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenerateOption {
	return func(c *generateConfig) {
		c.temperature = t
	}
}

// temperature < 0 means "not set"; providers omit the field so the remote
// default applies.
func newGenerateConfig(opts []GenerateOption) generateConfig {
	cfg := generateConfig{temperature: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
