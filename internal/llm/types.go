package llm

import (
	"context"
	"fmt"
)

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderMistral   Provider = "mistral"
	ProviderCohere    Provider = "cohere"
)

// completes a prompt into text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// generates embeddings from text
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	// embeds a search query rather than a stored document
	GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error)
}

// combines prompt completion and embedding generation
type LLM interface {
	Completer
	Embedder
}

// holds configuration for LLM initialization
type Config struct {
	CompleterProvider Provider
	CompleterAPIKey   string
	CompleterModel    string // e.g., "claude-3-haiku-20240307"

	EmbedderProvider Provider
	EmbedderAPIKey   string
	EmbedderModel    string // e.g., "text-embedding-3-small"

	MaxTokens   int     // for completer
	Temperature float32 // for completer
	MaxRetries  int     // per call, on rate limits and 5xx
}

// returned for non-2xx provider responses
type APIError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// rate limits and server errors are worth another attempt
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
