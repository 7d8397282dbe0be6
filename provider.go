// Package providers exposes interchangeable remote model backends (completion
// models, embedding models) behind a single capability interface, together
// with a retry/backoff driver for the transient failures remote model APIs
// routinely produce.
//
// Backends report failures as *ModelError values. A ModelError that carries
// RetryOptions is transient and tells the Retry driver how to pace further
// attempts; one without is fatal and surfaces immediately. The driver itself
// knows nothing about providers, so any fallible operation can be run
// through it:
//
//	gen, err := providers.Retry(ctx, func(ctx context.Context) (*providers.Generation, error) {
//	    return llm.Generate(ctx, prompt)
//	}, func(msg string, delay time.Duration, attempt int) {
//	    slog.Warn("retrying model call", "attempt", attempt, "delay", delay, "error", msg)
//	})
//
// For call sites that prefer a configured-upfront policy over the
// per-failure parameters a ModelError carries, RetryWrapper offers the same
// classification on top of a generic request/response client.
package providers

import (
	"context"
	"fmt"
)

// ProviderID identifies a supported model backend. The canonical string form
// is used for configuration, logging and dispatch; ParseProviderID and
// String are exact inverses.
type ProviderID string

const (
	ProviderOpenAI         ProviderID = "openai"
	ProviderCohere         ProviderID = "cohere"
	ProviderAI21           ProviderID = "ai21"
	ProviderAzureOpenAI    ProviderID = "azure_openai"
	ProviderAnthropic      ProviderID = "anthropic"
	ProviderMistral        ProviderID = "mistral"
	ProviderGoogleAIStudio ProviderID = "google_ai_studio"
)

// ProviderIDs returns every supported provider identifier.
func ProviderIDs() []ProviderID {
	return []ProviderID{
		ProviderOpenAI,
		ProviderCohere,
		ProviderAI21,
		ProviderAzureOpenAI,
		ProviderAnthropic,
		ProviderMistral,
		ProviderGoogleAIStudio,
	}
}

// String returns the canonical form accepted by ParseProviderID.
func (id ProviderID) String() string {
	return string(id)
}

// ParseProviderID parses the canonical string form of a provider identifier.
// Matching is exact and case-sensitive.
func ParseProviderID(s string) (ProviderID, error) {
	switch id := ProviderID(s); id {
	case ProviderOpenAI, ProviderCohere, ProviderAI21, ProviderAzureOpenAI,
		ProviderAnthropic, ProviderMistral, ProviderGoogleAIStudio:
		return id, nil
	default:
		return "", fmt.Errorf(
			"unknown provider ID %q (possible values: openai, cohere, ai21, azure_openai, anthropic, mistral, google_ai_studio)", s)
	}
}

// Provider is the capability interface every model backend implements.
// Implementations are safe for concurrent use.
type Provider interface {
	// ID returns the identifier the provider was constructed for.
	ID() ProviderID

	// Setup performs one-time initialization such as credential checks.
	// It is idempotent.
	Setup() error

	// Test makes a lightweight live call to verify the backend is usable.
	Test(ctx context.Context) error

	// LLM returns a handle to the named completion model.
	LLM(model string) LLM

	// Embedder returns a handle to the named embedding model.
	Embedder(model string) Embedder
}

// New returns the Provider implementation for id. Every ProviderID variant
// has an arm here; the error path is only reachable with an identifier that
// bypassed ParseProviderID.
func New(id ProviderID) (Provider, error) {
	switch id {
	case ProviderOpenAI:
		return newOpenAI(), nil
	case ProviderCohere:
		return newCohere(), nil
	case ProviderAI21:
		return newAI21(), nil
	case ProviderAzureOpenAI:
		return newAzureOpenAI(), nil
	case ProviderAnthropic:
		return newAnthropic(), nil
	case ProviderMistral:
		return newMistral(), nil
	case ProviderGoogleAIStudio:
		return newGoogleAIStudio(), nil
	default:
		return nil, fmt.Errorf("unknown provider ID %q", id)
	}
}
