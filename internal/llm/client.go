package llm

import "context"

// Request describes one text generation call to the backend provider.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Client is the text generation backend. Implementations must respect ctx
// cancellation; callers bound each request with a timeout.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
