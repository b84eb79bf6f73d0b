// Package reasoning provides the transport to the external reasoning provider:
// a chat-completions client with retries, rate limiting, a circuit breaker,
// response caching and lenient decoding of structured output.
package reasoning

import "context"

// Request is one prompt to the reasoning provider
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int

	// Accept, when set, rejects completions the caller cannot use. Rejected
	// completions are never cached.
	Accept func(raw string) error
}

func (r Request) accepts(raw string) bool {
	return r.Accept == nil || r.Accept(raw) == nil
}

// Client completes prompts. Implementations must honor ctx cancellation.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
