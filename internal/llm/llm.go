package llm

import (
	"fmt"

	"codeberg.org/marketwire/server/internal/config"
)

// combines a Completer and an Embedder into a single LLM
type CompositeLLM struct {
	Completer
	Embedder
}

// builds the LLM from application configuration
func NewLLM(cfg *config.Config) (LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return NewLLMWithConfig(&Config{
		CompleterProvider: Provider(cfg.LLMProvider),
		CompleterAPIKey:   cfg.APIKey(cfg.LLMProvider),
		CompleterModel:    cfg.LLMModel,
		EmbedderProvider:  Provider(cfg.EmbedderProvider),
		EmbedderAPIKey:    cfg.APIKey(cfg.EmbedderProvider),
		EmbedderModel:     cfg.EmbedderModel,
	})
}

// creates a new LLM with explicit configuration
func NewLLMWithConfig(config *Config) (LLM, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	var completer Completer

	switch config.CompleterProvider {
	case ProviderAnthropic:
		completer = NewAnthropicCompleter(AnthropicConfig{
			APIKey:      config.CompleterAPIKey,
			Model:       config.CompleterModel,
			MaxTokens:   config.MaxTokens,
			Temperature: config.Temperature,
			MaxRetries:  config.MaxRetries,
		})
	case ProviderOpenAI, ProviderMistral:
		chat, err := NewChatCompleter(ChatConfig{
			Provider:    config.CompleterProvider,
			APIKey:      config.CompleterAPIKey,
			Model:       config.CompleterModel,
			MaxTokens:   config.MaxTokens,
			Temperature: config.Temperature,
			MaxRetries:  config.MaxRetries,
		})
		if err != nil {
			return nil, err
		}

		completer = chat
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", config.CompleterProvider)
	}

	var embedder Embedder

	switch config.EmbedderProvider {
	case ProviderOpenAI:
		embedder = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     config.EmbedderAPIKey,
			Model:      config.EmbedderModel,
			MaxRetries: config.MaxRetries,
		})
	case ProviderCohere:
		embedder = NewCohereEmbedder(CohereConfig{
			APIKey: config.EmbedderAPIKey,
			Model:  config.EmbedderModel,
		})
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", config.EmbedderProvider)
	}

	return &CompositeLLM{
		Completer: completer,
		Embedder:  embedder,
	}, nil
}
