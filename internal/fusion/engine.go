package fusion

import "math"

// NeutralPrior is the starting belief of a sequential fold.
const NeutralPrior = 0.5

// Confidence bounds on a pairwise update.
const (
	minUpdateConfidence = 0.1
	maxConfidence       = 0.95
)

// logOddsDamping shrinks each additional likelihood's contribution in the
// independent fusion variant.
const logOddsDamping = 0.5

// Observation is one likelihood with a weight on that likelihood.
type Observation struct {
	Type       string
	Value      float64
	Confidence float64
}

// Result is a fused belief with its accumulated confidence.
type Result struct {
	Posterior     float64
	Confidence    float64
	EvidenceCount int
}

// BetaParams are the shape parameters of a Beta distribution approximating
// a posterior with a given confidence.
type BetaParams struct {
	Alpha float64
	Beta  float64
}

// Engine combines prior beliefs with uncertain evidence. Two fusion
// contracts coexist deliberately: the sequential fold serves batch
// multi-evidence fusion, the log-odds average serves request-time
// single-shot fusion of heterogeneous likelihoods. They are not
// interchangeable.
type Engine struct{}

// NewEngine returns the fusion engine.
func NewEngine() *Engine { return &Engine{} }

// Update applies one Bayesian update of prior by likelihood, attenuated by
// evidenceWeight: weight 0 leaves the prior unchanged, weight 1 fully
// applies the update. Prior and likelihood are clamped to [0.01, 0.99] to
// avoid degenerate odds. The returned confidence is |posterior-prior| scaled
// by the weight, bounded to [0.1, 0.95].
func (e *Engine) Update(prior, likelihood, evidenceWeight float64) (posterior, confidence float64) {
	prior = clampRange(prior, 0.01, 0.99)
	likelihood = clampRange(likelihood, 0.01, 0.99)
	evidenceWeight = clampRange(evidenceWeight, 0, 1)

	numerator := likelihood * prior
	denominator := numerator + (1-likelihood)*(1-prior)

	raw := prior
	if denominator != 0 {
		raw = numerator / denominator
	}

	posterior = prior + (raw-prior)*evidenceWeight
	confidence = clampRange(math.Abs(posterior-prior)*evidenceWeight, minUpdateConfidence, maxConfidence)
	return round4(posterior), round4(confidence)
}

// FuseSequential folds each observation through Update in order, starting
// from the neutral prior, accumulating a weighted-average confidence. The
// fold is sequential belief revision: order matters, and it must not be
// parallelized for a single entity.
func (e *Engine) FuseSequential(observations []Observation) Result {
	if len(observations) == 0 {
		return Result{Posterior: NeutralPrior, Confidence: 0}
	}

	posterior := NeutralPrior
	cumulative := 0.0
	for _, obs := range observations {
		stepPosterior, stepConfidence := e.Update(posterior, obs.Value, obs.Confidence)
		posterior = stepPosterior
		cumulative += stepConfidence * obs.Confidence
	}

	confidence := cumulative / float64(len(observations))
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return Result{
		Posterior:     round4(posterior),
		Confidence:    round4(confidence),
		EvidenceCount: len(observations),
	}
}

// FuseLogOdds combines a prior with independent likelihoods by damped
// log-odds averaging. With no likelihoods the clamped prior is returned.
func (e *Engine) FuseLogOdds(prior float64, likelihoods []float64) float64 {
	if len(likelihoods) == 0 {
		return clampRange(prior, 0, 1)
	}

	logOdds := probToLogOdds(prior)
	for _, likelihood := range likelihoods {
		logOdds += probToLogOdds(likelihood) * logOddsDamping
	}
	averaged := logOdds / (1 + logOddsDamping*float64(len(likelihoods)))
	return logOddsToProb(averaged)
}

// ComputeBetaParams converts a posterior and a confidence into Beta shape
// parameters via a confidence-scaled pseudo-count. Higher confidence yields
// sharper distributions.
func (e *Engine) ComputeBetaParams(posterior, confidence float64) BetaParams {
	n := float64(int(clampRange(confidence, 0, 1) * 100))
	if n < 2 {
		n = 2
	}
	return BetaParams{
		Alpha: round2(posterior * n),
		Beta:  round2((1 - posterior) * n),
	}
}

func probToLogOdds(p float64) float64 {
	p = clampRange(p, 0, 1)
	if p == 0 {
		return -1e6
	}
	if p == 1 {
		return 1e6
	}
	return math.Log(p / (1 - p))
}

func logOddsToProb(l float64) float64 {
	if l > 700 {
		return 1
	}
	if l < -700 {
		return 0
	}
	return clampRange(1/(1+math.Exp(-l)), 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
