package similarity

import (
	"context"
	"errors"

	"NewsCorroborator/internal/textutil"
)

// LexicalBackend scores candidates with term-frequency vectors and cosine
// similarity. The vocabulary is rebuilt on every call; no state leaks
// between requests.
type LexicalBackend struct{}

var _ Backend = (*LexicalBackend)(nil)

// NewLexicalBackend returns the stateless sparse backend.
func NewLexicalBackend() *LexicalBackend { return &LexicalBackend{} }

// Name identifies the backend in fall-through logs.
func (b *LexicalBackend) Name() string { return "lexical" }

// Scores vectorizes target and candidates over a shared per-call vocabulary.
func (b *LexicalBackend) Scores(ctx context.Context, target string, candidates []string) ([]float64, error) {
	targetTokens := textutil.Tokenize(target)
	if len(targetTokens) == 0 {
		return nil, errors.New("target has no tokens")
	}

	vocabulary := map[string]int{}
	addTokens := func(tokens []string) {
		for _, token := range tokens {
			if _, ok := vocabulary[token]; !ok {
				vocabulary[token] = len(vocabulary)
			}
		}
	}

	candidateTokens := make([][]string, len(candidates))
	addTokens(targetTokens)
	for i, candidate := range candidates {
		candidateTokens[i] = textutil.Tokenize(candidate)
		addTokens(candidateTokens[i])
	}

	vectorize := func(tokens []string) []float64 {
		vector := make([]float64, len(vocabulary))
		for _, token := range tokens {
			vector[vocabulary[token]]++
		}
		return vector
	}

	targetVector := vectorize(targetTokens)
	scores := make([]float64, len(candidates))
	for i, tokens := range candidateTokens {
		if len(tokens) == 0 {
			continue
		}
		scores[i] = cosine(targetVector, vectorize(tokens))
	}
	return scores, nil
}
