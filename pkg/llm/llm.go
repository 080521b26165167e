// Package llm wraps hosted chat-completion providers behind one interface.
// The generator only ever needs the completion text; provider envelopes stay
// inside this package.
package llm

import "context"

// Request is a single-turn completion request.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature *float64
}

// Client performs chat completions against a hosted model. Implementations
// return the raw completion text; an empty string with a nil error means the
// provider answered with no content.
type Client interface {
	// Complete performs one blocking completion.
	Complete(ctx context.Context, req Request) (string, error)

	// CompleteStream performs a streamed completion, invoking onDelta for
	// each partial text fragment, and returns the full accumulated text.
	// Streaming exists for incremental UI feedback only; callers parse the
	// accumulated whole.
	CompleteStream(ctx context.Context, req Request, onDelta func(string)) (string, error)
}
