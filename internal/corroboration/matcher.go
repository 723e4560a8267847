package corroboration

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"NewsCorroborator/internal/domain"
	"NewsCorroborator/internal/similarity"
	"NewsCorroborator/internal/textutil"
)

// Default matching parameters. Callers passing zero values get these.
const (
	DefaultThreshold = 0.65
	DefaultTopN      = 10
)

// Structural sub-score weights. Fixed constants per the reference design;
// changing them is a code change, not a runtime option.
const (
	sameSourceWeight = 0.2
	themeWeight      = 0.5
	timeDecayWeight  = 0.3

	semanticShare   = 0.7
	structuralShare = 0.3
)

// Matcher combines semantic and structural similarity into a ranked,
// thresholded corroboration list.
type Matcher struct {
	chain         *similarity.Chain
	prefilter     *Prefilter
	maxCandidates int
	windowDays    int
	logger        *slog.Logger
}

// NewMatcher wires the similarity chain and prefilter policy.
func NewMatcher(chain *similarity.Chain, prefilter *Prefilter, maxCandidates, windowDays int, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		chain:         chain,
		prefilter:     prefilter,
		maxCandidates: maxCandidates,
		windowDays:    windowDays,
		logger:        logger,
	}
}

// Find returns candidates corroborating the target, sorted descending by
// similarity and truncated to topN. Zero threshold/topN select defaults.
// Matching never hard-fails: the worst case is an empty result.
func (m *Matcher) Find(ctx context.Context, target domain.ArticleRecord, pool []domain.ArticleRecord, threshold float64, topN int) []domain.CorroborationHit {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(pool) == 0 {
		return nil
	}

	candidates := m.prefilter.Select(target, pool, m.maxCandidates, m.windowDays)
	if len(candidates) == 0 {
		return nil
	}
	m.logger.Debug("prefilter narrowed pool", "pool", len(pool), "candidates", len(candidates))

	targetText := textutil.StripMarkup(target.Text())
	texts := make([]string, len(candidates))
	for i, candidate := range candidates {
		texts[i] = textutil.StripMarkup(candidate.Text())
	}
	semantic := m.chain.Scores(ctx, targetText, texts)

	hits := make([]domain.CorroborationHit, 0, len(candidates))
	for i, candidate := range candidates {
		total := semanticShare*semantic[i] + structuralShare*StructuralSimilarity(target, candidate)
		if total < threshold {
			continue
		}
		hits = append(hits, domain.CorroborationHit{
			CandidateID: candidate.ID,
			Title:       candidate.Title,
			Source:      candidate.Source,
			Similarity:  round4(total),
		})
	}

	// Stable sort keeps prefilter order for equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > topN {
		hits = hits[:topN]
	}
	return hits
}

// StructuralSimilarity scores metadata agreement between two records as the
// mean of the applicable weighted sub-scores: same-source indicator, Jaccard
// of theme sets, and exponential time decay over 24h. Sub-scores whose
// inputs are absent do not contribute; the mean renormalizes over the
// present subset.
func StructuralSimilarity(a, b domain.ArticleRecord) float64 {
	var scores []float64

	if a.Source != "" && b.Source != "" {
		indicator := 0.0
		if a.Source == b.Source {
			indicator = 1.0
		}
		scores = append(scores, indicator*sameSourceWeight)
	}

	themesA, themesB := a.ThemeSet(), b.ThemeSet()
	if len(themesA) > 0 && len(themesB) > 0 {
		scores = append(scores, jaccard(themesA, themesB)*themeWeight)
	}

	if a.HasPublishedAt() && b.HasPublishedAt() {
		delta := a.PublishedAt.Sub(b.PublishedAt).Seconds()
		if delta < 0 {
			delta = -delta
		}
		scores = append(scores, math.Exp(-delta/(24*3600))*timeDecayWeight)
	}

	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for theme := range a {
		if _, ok := b[theme]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
