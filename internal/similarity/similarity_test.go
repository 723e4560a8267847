package similarity

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// fakeEmbedder returns deterministic vectors keyed by text so identical
// texts embed identically.
type fakeEmbedder struct {
	fail  bool
	calls int
}

func (f *fakeEmbedder) ModelName() string { return "fake" }

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("model unavailable")
	}
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vector := make([]float64, 26)
		for _, r := range text {
			if r >= 'a' && r <= 'z' {
				vector[r-'a']++
			}
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func TestSelfSimilarityAcrossBackends(t *testing.T) {
	t.Parallel()

	text := "un sommet diplomatique s'est tenu hier"
	backends := []Backend{
		NewEmbeddingBackend(&fakeEmbedder{}, 4, 0),
		NewLexicalBackend(),
		NewFuzzyBackend(),
	}

	for _, backend := range backends {
		scores, err := backend.Scores(context.Background(), text, []string{text})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", backend.Name(), err)
		}
		if len(scores) != 1 {
			t.Fatalf("%s: expected 1 score, got %d", backend.Name(), len(scores))
		}
		if scores[0] < 0.999 {
			t.Fatalf("%s: self-similarity = %f, want ~1.0", backend.Name(), scores[0])
		}
	}
}

func TestScoresStayInRange(t *testing.T) {
	t.Parallel()

	chain := NewChain(slog.Default(), NewLexicalBackend(), NewFuzzyBackend())
	candidates := []string{"totally unrelated words", "sommet diplomatique", "", "a"}
	scores := chain.Scores(context.Background(), "sommet diplomatique hier", candidates)

	if len(scores) != len(candidates) {
		t.Fatalf("expected %d scores, got %d", len(candidates), len(scores))
	}
	for i, score := range scores {
		if score < 0 || score > 1 {
			t.Fatalf("score[%d] = %f out of [0,1]", i, score)
		}
	}
	if scores[2] != 0 {
		t.Fatalf("blank candidate scored %f, want 0", scores[2])
	}
}

func TestChainFallsThroughOnBackendFailure(t *testing.T) {
	t.Parallel()

	failing := &fakeEmbedder{fail: true}
	chain := NewChain(slog.Default(),
		NewEmbeddingBackend(failing, 4, 0),
		NewLexicalBackend(),
		NewFuzzyBackend(),
	)

	text := "identical text for both sides"
	scores := chain.Scores(context.Background(), text, []string{text})
	if failing.calls == 0 {
		t.Fatal("embedding backend was never attempted")
	}
	if scores[0] < 0.999 {
		t.Fatalf("fallback score = %f, want ~1.0", scores[0])
	}
}

func TestChainBlankTargetScoresZero(t *testing.T) {
	t.Parallel()

	chain := NewChain(slog.Default(), NewLexicalBackend(), NewFuzzyBackend())
	scores := chain.Scores(context.Background(), "   ", []string{"anything at all"})
	if scores[0] != 0 {
		t.Fatalf("blank target scored %f, want 0", scores[0])
	}
}

func TestEmbeddingBackendBatches(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{}
	backend := NewEmbeddingBackend(embedder, 2, 0)

	candidates := []string{"one", "two", "three", "four", "five"}
	if _, err := backend.Scores(context.Background(), "target", candidates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 6 texts at batch size 2 => 3 calls.
	if embedder.calls != 3 {
		t.Fatalf("expected 3 embed calls, got %d", embedder.calls)
	}
}

func TestTokenSortRatioIgnoresWordOrder(t *testing.T) {
	t.Parallel()

	if got := TokenSortRatio("alpha beta gamma", "gamma alpha beta"); got < 0.999 {
		t.Fatalf("reordered tokens scored %f, want ~1.0", got)
	}
	if got := TokenSortRatio("", "anything"); got != 0 {
		t.Fatalf("empty side scored %f, want 0", got)
	}
}
