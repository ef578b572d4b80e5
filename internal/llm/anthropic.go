package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	anthropicMessagesURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-haiku-20240307"
	defaultMaxTokens      = 1024
	defaultTemperature    = 0.1
)

// rate limiter for Anthropic API calls (50 requests/second with burst capacity of 10)
var anthropicRateLimiter = rate.NewLimiter(50, 10)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []content `json:"content"`
	Model   string    `json:"model"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicConfig struct {
	APIKey      string
	Model       string  // e.g., "claude-3-haiku-20240307"
	MaxTokens   int     // max tokens for response
	Temperature float32 // 0.0 to 1.0
	MaxRetries  int
	BaseURL     string // overrides the messages endpoint
}

type AnthropicCompleter struct {
	config     AnthropicConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewAnthropicCompleter(config AnthropicConfig) *AnthropicCompleter {
	if config.Model == "" {
		config.Model = defaultAnthropicModel
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

	if config.BaseURL == "" {
		config.BaseURL = anthropicMessagesURL
	}

	return &AnthropicCompleter{
		config:     config,
		httpClient: providerHTTPClient,
		limiter:    anthropicRateLimiter,
	}
}

func (c *AnthropicCompleter) Model() string {
	return c.config.Model
}

// sends a single user turn and returns the first text block
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	headers := map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	resp, err := withRetry(ctx, c.config.MaxRetries, func(ctx context.Context) (*messagesResponse, error) {
		var out messagesResponse
		if err := postJSON(ctx, c.httpClient, c.limiter, ProviderAnthropic, c.config.BaseURL, headers, reqBody, &out); err != nil {
			return nil, err
		}

		return &out, nil
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return strings.TrimSpace(resp.Content[0].Text), nil
}
