package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"NewsCorroborator/internal/ports"
)

// HTTPEmbedder talks to a self-hosted inference service exposing a JSON
// embeddings endpoint. Request: {"texts": [...], "model": "..."}; response:
// {"embeddings": [[...], ...]}.
type HTTPEmbedder struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

var _ ports.Embedder = (*HTTPEmbedder)(nil)

// NewHTTPEmbedder creates a reusable client for the inference endpoint.
func NewHTTPEmbedder(endpoint, apiKey, model string) *HTTPEmbedder {
	return &HTTPEmbedder{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// ModelName reports the configured model identifier.
func (c *HTTPEmbedder) ModelName() string { return c.model }

// EmbedTexts posts the batch and decodes one vector per text.
func (c *HTTPEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	payload := map[string]any{"texts": texts}
	if c.model != "" {
		payload["model"] = c.model
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var parsed struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("endpoint returned %d vectors for %d texts", len(parsed.Embeddings), len(texts))
	}
	return parsed.Embeddings, nil
}
