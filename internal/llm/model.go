// Package llm hides the generative text backends behind TextModel so the
// persona service can run against Gemini, any OpenAI-compatible endpoint,
// or a fake in tests.
package llm

import (
	"context"
	"errors"
	"fmt"

	"wodo.ai/wodo-connect/internal/config"
)

var ErrEmptyResponse = errors.New("model returned an empty response")

// Request is a single-turn generation. History, when needed, is rendered
// into Prompt by the caller.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	TopP        float32
	// JSON asks the backend for an application/json response.
	JSON bool
}

type TextModel interface {
	Generate(ctx context.Context, req Request) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Close() error
}

// New builds the backend selected by cfg.LLMProvider.
func New(ctx context.Context, cfg config.Config) (TextModel, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini, "":
		return NewGemini(ctx, cfg.GeminiAPIKey)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
