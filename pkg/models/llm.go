package models

import "context"

// LLMProvider is the core interface that all text-generation integrations
// must implement. Never call a specific vendor directly — always inject this
// interface. Implementations must be safe for concurrent use and must honor
// ctx cancellation.
type LLMProvider interface {
	// Generate sends one prompt and returns the raw completion text.
	Generate(ctx context.Context, prompt string) (string, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}
