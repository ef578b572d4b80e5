package llm

import (
	"context"
	"errors"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
)

const defaultCohereModel = "embed-english-v3.0"

type CohereConfig struct {
	APIKey  string
	Model   string // e.g., "embed-english-v3.0"
	BaseURL string
}

// embedder backed by the Cohere Embed v2 API; the SDK retries on its own
type CohereEmbedder struct {
	client *cohereclient.Client
	model  string
}

func NewCohereEmbedder(config CohereConfig) *CohereEmbedder {
	if config.Model == "" {
		config.Model = defaultCohereModel
	}

	opts := []cohereoption.RequestOption{
		cohereclient.WithToken(config.APIKey),
		cohereclient.WithHTTPClient(providerHTTPClient),
	}

	if config.BaseURL != "" {
		opts = append(opts, cohereclient.WithBaseURL(config.BaseURL))
	}

	return &CohereEmbedder{
		client: cohereclient.NewClient(opts...),
		model:  config.Model,
	}
}

func (e *CohereEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return embeddings[0], nil
}

func (e *CohereEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embed(ctx, texts, cohere.EmbedInputTypeSearchDocument)
}

// v3 models embed queries and documents into different spaces
func (e *CohereEmbedder) GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.embed(ctx, []string{text}, cohere.EmbedInputTypeSearchQuery)
	if err != nil {
		return nil, err
	}

	return embeddings[0], nil
}

func (e *CohereEmbedder) embed(ctx context.Context, texts []string, inputType cohere.EmbedInputType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	resp, err := e.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          texts,
		Model:          e.model,
		InputType:      inputType,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embedding request failed: %w", err)
	}

	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere returned no float embeddings")
	}

	if len(resp.Embeddings.Float) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings.Float), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings.Float))
	for i, vec := range resp.Embeddings.Float {
		fv := make([]float32, len(vec))
		for j, v := range vec {
			fv[j] = float32(v)
		}

		out[i] = Normalize(fv)
	}

	return out, nil
}
