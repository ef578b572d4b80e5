package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// shared HTTP client for provider API calls
// reuses connection pool and timeout configuration
var providerHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// posts a JSON body and decodes the JSON response into out
func postJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, provider Provider, url string, headers map[string]string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &transportError{err: err}
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// scales v to unit length so L2 distances share one scale across providers
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))

	for i, x := range v {
		out[i] = x / norm
	}

	return out
}
