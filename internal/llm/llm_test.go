package llm

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, Normalize(zero))
}

func TestAnthropicCompleter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "hello", req.Messages[0].Content)

		_ = json.NewEncoder(w).Encode(messagesResponse{ //nolint:errcheck
			Content: []content{{Type: "text", Text: "  world \n"}},
		})
	}))
	defer server.Close()

	c := NewAnthropicCompleter(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL})

	out, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "world", out)
}

func TestChatCompleter_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`)) //nolint:errcheck
	}))
	defer server.Close()

	c, err := NewChatCompleter(ChatConfig{Provider: ProviderMistral, APIKey: "k", BaseURL: server.URL, MaxRetries: 2})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatCompleter_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c, err := NewChatCompleter(ChatConfig{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "prompt")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewChatCompleter_UnsupportedProvider(t *testing.T) {
	_, err := NewChatCompleter(ChatConfig{Provider: ProviderCohere})
	assert.Error(t, err)
}

func TestOpenAIEmbedder_OrdersAndNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,2]},{"index":0,"embedding":[3,4]}]}`)) //nolint:errcheck
	}))
	defer server.Close()

	e := NewOpenAIEmbedder(OpenAIConfig{APIKey: "k", BaseURL: server.URL})

	out, err := e.GenerateEmbeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.InDeltaSlice(t, []float32{0.6, 0.8}, out[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1}, out[1], 1e-6)
}

func TestOpenAIEmbedder_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`)) //nolint:errcheck
	}))
	defer server.Close()

	e := NewOpenAIEmbedder(OpenAIConfig{APIKey: "k", BaseURL: server.URL})

	_, err := e.GenerateEmbedding(context.Background(), "a")
	assert.Error(t, err)
}

func TestCohereEmbedder_QueryInputType(t *testing.T) {
	var inputTypes []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			InputType string `json:"input_type"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		inputTypes = append(inputTypes, body.InputType)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"e1","embeddings":{"float":[[3,4]]},"texts":["x"]}`)) //nolint:errcheck
	}))
	defer server.Close()

	e := NewCohereEmbedder(CohereConfig{APIKey: "k", BaseURL: server.URL})

	_, err := e.GenerateEmbedding(context.Background(), "RBI holds repo rate")
	require.NoError(t, err)

	_, err = e.GenerateQueryEmbedding(context.Background(), "banking news")
	require.NoError(t, err)

	assert.Equal(t, []string{"search_document", "search_query"}, inputTypes)
}

func TestNewLLMWithConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"anthropic + openai", &Config{CompleterProvider: ProviderAnthropic, EmbedderProvider: ProviderOpenAI}, false},
		{"mistral + cohere", &Config{CompleterProvider: ProviderMistral, EmbedderProvider: ProviderCohere}, false},
		{"unknown completer", &Config{CompleterProvider: "foo", EmbedderProvider: ProviderOpenAI}, true},
		{"unknown embedder", &Config{CompleterProvider: ProviderOpenAI, EmbedderProvider: ProviderAnthropic}, true},
		{"nil config", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLLMWithConfig(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", `{"sector":"IT"}`, "IT", false},
		{"code fence", "```json\n{\"sector\":\"Banking\"}\n```", "Banking", false},
		{"doubled braces", `{{"sector":"Energy"}}`, "Energy", false},
		{"surrounding prose", `Here you go: {"sector":"Pharma"} hope it helps`, "Pharma", false},
		{"not json", "I cannot help with that", "", true},
		{"broken after repair", `{"sector": }`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				Sector string `json:"sector"`
			}

			err := DecodeJSON(tt.raw, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Sector)
		})
	}
}

func TestEmbeddingDimension(t *testing.T) {
	tests := []struct {
		provider Provider
		model    string
		want     int
		wantErr  bool
	}{
		{ProviderOpenAI, "", 1536, false},
		{ProviderCohere, "", 1024, false},
		{ProviderOpenAI, "text-embedding-3-large", 3072, false},
		{ProviderCohere, "embed-english-light-v3.0", 384, false},
		{ProviderAnthropic, "", 0, true},
		{ProviderOpenAI, "my-finetune", 0, true},
	}

	for _, tt := range tests {
		got, err := EmbeddingDimension(tt.provider, tt.model)
		if tt.wantErr {
			assert.Error(t, err, "%s/%s", tt.provider, tt.model)
			continue
		}

		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
