package llm

import "fmt"

// output sizes of the embedding models we know how to index
var embeddingDimensions = map[string]int{
	"text-embedding-3-small":        1536,
	"text-embedding-3-large":        3072,
	"text-embedding-ada-002":        1536,
	"embed-english-v3.0":            1024,
	"embed-multilingual-v3.0":       1024,
	"embed-english-light-v3.0":      384,
	"embed-multilingual-light-v3.0": 384,
}

// returns the vector size produced by provider/model; an empty model means
// the provider default
func EmbeddingDimension(provider Provider, model string) (int, error) {
	if model == "" {
		switch provider {
		case ProviderOpenAI:
			model = defaultOpenAIModel
		case ProviderCohere:
			model = defaultCohereModel
		default:
			return 0, fmt.Errorf("unsupported embedder provider: %s", provider)
		}
	}

	dim, ok := embeddingDimensions[model]
	if !ok {
		return 0, fmt.Errorf("unknown embedding dimension for model %q", model)
	}

	return dim, nil
}
