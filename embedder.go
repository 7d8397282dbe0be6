package providers

import "context"

// Embedder is a handle to one embedding model on a specific provider,
// obtained from Provider.Embedder. Implementations are safe for concurrent
// use.
type Embedder interface {
	// Embed returns one vector per input text, in input order. Remote
	// failures are reported as *ModelError.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// unsupportedEmbedder stands in for providers without an embedding API, so
// Provider.Embedder never returns nil.
type unsupportedEmbedder struct {
	id ProviderID
}

func (e unsupportedEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, NewModelError("%s has no embedding models", e.id)
}
