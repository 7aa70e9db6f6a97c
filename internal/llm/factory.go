// Package llm wires text-generation providers for the pipeline stages and
// holds the helpers shared by everything that post-processes model output.
package llm

import (
	"fmt"

	"github.com/fromscratch/blueprint/internal/config"
	"github.com/fromscratch/blueprint/internal/llm/anthropic"
	"github.com/fromscratch/blueprint/internal/llm/mock"
	"github.com/fromscratch/blueprint/internal/llm/ollama"
	"github.com/fromscratch/blueprint/internal/llm/openai"
	"github.com/fromscratch/blueprint/pkg/models"
)

// NewProvider constructs the appropriate LLM provider based on config.
// Called once at worker startup.
func NewProvider(cfg config.LLMConfig) (models.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q: must be one of ollama, openai, anthropic, mock", cfg.Provider)
	}
}
