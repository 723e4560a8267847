package similarity

import (
	"context"

	"github.com/agnivade/levenshtein"

	"NewsCorroborator/internal/textutil"
)

// FuzzyBackend is the last-resort scorer: a normalized token-sort edit
// distance ratio. It has no external dependencies and never fails.
type FuzzyBackend struct{}

var _ Backend = (*FuzzyBackend)(nil)

// NewFuzzyBackend returns the fallback fuzzy scorer.
func NewFuzzyBackend() *FuzzyBackend { return &FuzzyBackend{} }

// Name identifies the backend in fall-through logs.
func (b *FuzzyBackend) Name() string { return "fuzzy" }

// Scores computes TokenSortRatio for every candidate.
func (b *FuzzyBackend) Scores(ctx context.Context, target string, candidates []string) ([]float64, error) {
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		scores[i] = TokenSortRatio(target, candidate)
	}
	return scores, nil
}

// TokenSortRatio compares two strings after normalizing and sorting their
// tokens, returning 1 - editDistance/maxLen in [0,1]. Word order does not
// affect the score.
func TokenSortRatio(a, b string) float64 {
	sortedA := textutil.SortTokens(a)
	sortedB := textutil.SortTokens(b)
	if sortedA == "" || sortedB == "" {
		return 0
	}
	if sortedA == sortedB {
		return 1
	}

	maxLen := len([]rune(sortedA))
	if l := len([]rune(sortedB)); l > maxLen {
		maxLen = l
	}
	distance := levenshtein.ComputeDistance(sortedA, sortedB)
	return clamp01(1 - float64(distance)/float64(maxLen))
}
