package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"NewsCorroborator/internal/ports"
)

const defaultEmbedTimeout = 30 * time.Second

// EmbeddingBackend scores candidates by cosine similarity of dense vectors.
// Embedding calls are batched to bound memory on constrained hosts and
// wrapped in a timeout so a stalled model call cannot block the request.
type EmbeddingBackend struct {
	embedder  ports.Embedder
	batchSize int
	timeout   time.Duration
}

var _ Backend = (*EmbeddingBackend)(nil)

// NewEmbeddingBackend wires an embedder with the configured batch size.
func NewEmbeddingBackend(embedder ports.Embedder, batchSize int, timeout time.Duration) *EmbeddingBackend {
	if batchSize <= 0 {
		batchSize = 8
	}
	if timeout <= 0 {
		timeout = defaultEmbedTimeout
	}
	return &EmbeddingBackend{embedder: embedder, batchSize: batchSize, timeout: timeout}
}

// Name identifies the backend in fall-through logs.
func (b *EmbeddingBackend) Name() string { return "embedding" }

// Scores embeds target and candidates, then compares each candidate vector
// against the target vector.
func (b *EmbeddingBackend) Scores(ctx context.Context, target string, candidates []string) ([]float64, error) {
	if b.embedder == nil {
		return nil, errors.New("no embedder configured")
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, target)
	texts = append(texts, candidates...)

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batchCtx, cancel := context.WithTimeout(ctx, b.timeout)
		batch, err := b.embedder.EmbedTexts(batchCtx, texts[start:end])
		cancel()
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = cosine(vectors[0], vectors[i+1])
	}
	return scores, nil
}

// cosine returns the cosine similarity of two vectors clamped to [0,1].
// A zero vector scores 0 against anything.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
