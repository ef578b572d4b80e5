package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	openaiEmbeddingsURL     = "https://api.openai.com/v1/embeddings"
	openaiChatURL           = "https://api.openai.com/v1/chat/completions"
	mistralChatURL          = "https://api.mistral.ai/v1/chat/completions"
	defaultOpenAIModel      = "text-embedding-3-small"
	defaultOpenAIChatModel  = "gpt-4o-mini"
	defaultMistralChatModel = "mistral-small-latest"
)

var (
	openaiRateLimiter  = rate.NewLimiter(50, 10)
	mistralRateLimiter = rate.NewLimiter(5, 2)
)

type embeddingRequest struct {
	Input    []string `json:"input"`
	Model    string   `json:"model"`
	Encoding string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type OpenAIConfig struct {
	APIKey     string
	Model      string // e.g., "text-embedding-3-small"
	MaxRetries int
	BaseURL    string
}

type OpenAIEmbedder struct {
	config     OpenAIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewOpenAIEmbedder(config OpenAIConfig) *OpenAIEmbedder {
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}

	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}

	if config.BaseURL == "" {
		config.BaseURL = openaiEmbeddingsURL
	}

	return &OpenAIEmbedder{
		config:     config,
		httpClient: providerHTTPClient, // use shared client with proper timeouts and connection pooling
		limiter:    openaiRateLimiter,
	}
}

func (e *OpenAIEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return embeddings[0], nil
}

// openai embeds queries and documents the same way
func (e *OpenAIEmbedder) GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error) {
	return e.GenerateEmbedding(ctx, text)
}

func (e *OpenAIEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	reqBody := embeddingRequest{
		Input:    texts,
		Model:    e.config.Model,
		Encoding: "float",
	}

	headers := map[string]string{"Authorization": "Bearer " + e.config.APIKey}

	resp, err := withRetry(ctx, e.config.MaxRetries, func(ctx context.Context) (*embeddingResponse, error) {
		var out embeddingResponse
		if err := postJSON(ctx, e.httpClient, e.limiter, ProviderOpenAI, e.config.BaseURL, headers, reqBody, &out); err != nil {
			return nil, err
		}

		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(resp.Data))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}

		embeddings[data.Index] = Normalize(data.Embedding)
	}

	return embeddings, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int     `json:"index"`
		Message message `json:"message"`
	} `json:"choices"`
}

type ChatConfig struct {
	Provider    Provider // openai or mistral
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	MaxRetries  int
	BaseURL     string
}

// completer for OpenAI-compatible chat completion APIs (OpenAI, Mistral)
type ChatCompleter struct {
	config     ChatConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewChatCompleter(config ChatConfig) (*ChatCompleter, error) {
	var limiter *rate.Limiter

	switch config.Provider {
	case ProviderOpenAI:
		if config.Model == "" {
			config.Model = defaultOpenAIChatModel
		}

		if config.BaseURL == "" {
			config.BaseURL = openaiChatURL
		}

		limiter = openaiRateLimiter
	case ProviderMistral:
		if config.Model == "" {
			config.Model = defaultMistralChatModel
		}

		if config.BaseURL == "" {
			config.BaseURL = mistralChatURL
		}

		limiter = mistralRateLimiter
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", config.Provider)
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}

	return &ChatCompleter{
		config:     config,
		httpClient: providerHTTPClient,
		limiter:    limiter,
	}, nil
}

func (c *ChatCompleter) Model() string {
	return c.config.Model
}

func (c *ChatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	headers := map[string]string{"Authorization": "Bearer " + c.config.APIKey}

	resp, err := withRetry(ctx, c.config.MaxRetries, func(ctx context.Context) (*chatResponse, error) {
		var out chatResponse
		if err := postJSON(ctx, c.httpClient, c.limiter, c.config.Provider, c.config.BaseURL, headers, reqBody, &out); err != nil {
			return nil, err
		}

		return &out, nil
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
