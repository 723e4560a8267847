package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"NewsCorroborator/internal/ports"
)

const defaultCohereModel = "embed-english-v3.0"

// CohereEmbedder produces dense vectors through the Cohere Embed API.
type CohereEmbedder struct {
	client *cohereclient.Client
	model  string
}

var _ ports.Embedder = (*CohereEmbedder)(nil)

// NewCohereEmbedder builds a client with its own HTTP transport timeout.
func NewCohereEmbedder(apiKey, model string) *CohereEmbedder {
	if model == "" {
		model = defaultCohereModel
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return &CohereEmbedder{client: client, model: model}
}

// ModelName reports the configured embed model.
func (c *CohereEmbedder) ModelName() string { return c.model }

// EmbedTexts returns one float vector per input text.
func (c *CohereEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          texts,
		Model:          c.model,
		InputType:      cohere.EmbedInputTypeSearchDocument,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed returned no float embeddings")
	}

	vectors := resp.Embeddings.Float
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("cohere returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}
