package engine

import "context"

// completionRequest is one single-turn completion call.
type completionRequest struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// provider abstracts the model API behind the engine.
type provider interface {
	// Complete makes a single completion call and returns the text.
	Complete(ctx context.Context, req completionRequest) (string, error)

	// Name returns the provider name.
	Name() string
}

// defaultMaxTokens bounds completion size when the caller does not care.
const defaultMaxTokens = 8192
