package corroboration

import (
	"sort"
	"time"

	"NewsCorroborator/internal/domain"
	"NewsCorroborator/internal/similarity"
)

// minCandidateBudget is the floor applied to maxCandidates so the matcher
// always has a minimal working set.
const minCandidateBudget = 5

// Prefilter shrinks an arbitrarily large candidate pool to a bounded working
// set before the expensive similarity backend runs. Tier order is a policy
// decision: same-source correlation is the strongest free signal.
type Prefilter struct{}

// NewPrefilter returns the three-tier candidate selector.
func NewPrefilter() *Prefilter { return &Prefilter{} }

// Select fills the candidate budget in three tiers, each excluding the
// target's own id and already-selected items:
//  1. same source as the target, in original pool order
//  2. publishedAt within windowDays of the target
//  3. best remaining items by cheap title-only fuzzy similarity
func (p *Prefilter) Select(target domain.ArticleRecord, pool []domain.ArticleRecord, maxCandidates, windowDays int) []domain.ArticleRecord {
	if len(pool) == 0 {
		return nil
	}

	budget := maxCandidates
	if budget < minCandidateBudget {
		budget = minCandidateBudget
	}

	var sameSource, recent, other []domain.ArticleRecord
	window := time.Duration(windowDays) * 24 * time.Hour

	for _, candidate := range pool {
		if target.ID != "" && candidate.ID == target.ID {
			continue
		}
		if target.Source != "" && candidate.Source != "" && candidate.Source == target.Source {
			sameSource = append(sameSource, candidate)
			continue
		}
		if target.HasPublishedAt() && candidate.HasPublishedAt() {
			delta := target.PublishedAt.Sub(candidate.PublishedAt)
			if delta < 0 {
				delta = -delta
			}
			if delta <= window {
				recent = append(recent, candidate)
				continue
			}
		}
		other = append(other, candidate)
	}

	selected := take(sameSource, budget)

	if len(selected) < budget {
		selected = append(selected, take(recent, budget-len(selected))...)
	}

	if len(selected) < budget && len(other) > 0 {
		type scored struct {
			score     float64
			candidate domain.ArticleRecord
		}
		ranked := make([]scored, 0, len(other))
		for _, candidate := range other {
			ranked = append(ranked, scored{
				score:     similarity.TokenSortRatio(target.Title, candidate.Title),
				candidate: candidate,
			})
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		for _, item := range ranked {
			if len(selected) == budget {
				break
			}
			selected = append(selected, item.candidate)
		}
	}

	return selected
}

func take(items []domain.ArticleRecord, n int) []domain.ArticleRecord {
	if len(items) <= n {
		return append([]domain.ArticleRecord(nil), items...)
	}
	return append([]domain.ArticleRecord(nil), items[:n]...)
}
