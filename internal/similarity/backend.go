package similarity

import (
	"context"
	"log/slog"

	"NewsCorroborator/internal/textutil"
)

// Backend scores pairwise text similarity in [0,1]. Implementations return
// one score per candidate, in candidate order.
type Backend interface {
	Name() string
	Scores(ctx context.Context, target string, candidates []string) ([]float64, error)
}

// Chain tries each backend in preference order, falling through on failure.
// A failure never reaches the caller; the last backend (fuzzy) cannot fail,
// so Scores always returns a full numeric result.
type Chain struct {
	backends []Backend
	logger   *slog.Logger
}

// NewChain builds the fallback chain. Backends are attempted in the order
// given.
func NewChain(logger *slog.Logger, backends ...Backend) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{backends: backends, logger: logger}
}

// Scores runs the chain for one target against all candidates. Blank targets
// and blank candidates score 0.0 against anything.
func (c *Chain) Scores(ctx context.Context, target string, candidates []string) []float64 {
	scores := make([]float64, len(candidates))
	if len(candidates) == 0 || textutil.Normalize(target) == "" {
		return scores
	}

	for _, backend := range c.backends {
		result, err := backend.Scores(ctx, target, candidates)
		if err != nil {
			c.logger.Warn("similarity backend failed, falling through",
				"backend", backend.Name(), "error", err)
			continue
		}
		if len(result) != len(candidates) {
			c.logger.Warn("similarity backend returned short result, falling through",
				"backend", backend.Name(), "got", len(result), "want", len(candidates))
			continue
		}
		for i, score := range result {
			if textutil.Normalize(candidates[i]) == "" {
				scores[i] = 0
				continue
			}
			scores[i] = clamp01(score)
		}
		return scores
	}

	return scores
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
