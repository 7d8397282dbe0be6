package providers

import (
	"context"
)

// Client is the minimal request/response surface RetryWrapper wraps. Req and
// Resp can be any types, so completion calls, embedding calls and plain HTTP
// round trips all fit.
//
// Example:
//
//	type completionClient struct {
//	    llm providers.LLM
//	}
//
//	func (c *completionClient) Call(ctx context.Context, prompt string) (*providers.Generation, error) {
//	    return c.llm.Generate(ctx, prompt)
//	}
type Client[Req, Resp any] interface {
	// Call performs a request and returns a response or error. The context
	// controls timeouts and cancellation.
	Call(ctx context.Context, req Req) (Resp, error)
}
