package confidence

import (
	"math"

	"NewsCorroborator/internal/domain"
)

// Feature weights. Fixed constants per the reference design; novelty and
// sentiment strength are inverted because high novelty and high emotional
// charge reduce trust.
const (
	weightSource     = 0.35
	weightCorro      = 0.25
	weightModel      = 0.20
	weightCoverage   = 0.10
	weightNovelty    = 0.05
	weightSentiment  = 0.05
	calibrationSlope = 6.0
)

// Calculator maps a feature vector into a calibrated confidence scalar plus
// an explanation record. It never fails on bad input: features are clamped
// or defaulted, trading strict validation for availability.
type Calculator struct{}

// NewCalculator returns the fixed-weight confidence scorer.
func NewCalculator() *Calculator { return &Calculator{} }

// Compute clamps the features, combines them through the weight table, and
// calibrates the raw sum through a logistic squash centered on 0.5.
func (c *Calculator) Compute(features domain.ConfidenceFeatures) (float64, domain.ConfidenceExplanation) {
	sourceReliability := clamp01(features.SourceReliability)
	modelProbability := clamp01(features.ModelProbability)
	sentimentStrength := clamp01(features.SentimentStrength)
	novelty := clamp01(features.NoveltyScore)
	coverage := clamp01(features.Coverage)

	count := features.CorroborationCount
	if count < 0 || math.IsNaN(count) {
		count = 0
	}
	corroborationNorm := clamp01(1 - math.Exp(-count/2))

	raw := weightSource*sourceReliability +
		weightCorro*corroborationNorm +
		weightModel*modelProbability +
		weightCoverage*coverage +
		weightNovelty*(1-novelty) +
		weightSentiment*(1-sentimentStrength)

	confidence := clamp01(logistic((raw - 0.5) * calibrationSlope))

	explanation := domain.ConfidenceExplanation{
		RawCombination:    raw,
		SourceReliability: sourceReliability,
		CorroborationNorm: corroborationNorm,
		ModelProbability:  modelProbability,
		Coverage:          coverage,
		Novelty:           novelty,
		SentimentStrength: sentimentStrength,
		Weights: map[string]float64{
			"w_source":   weightSource,
			"w_corro":    weightCorro,
			"w_model":    weightModel,
			"w_coverage": weightCoverage,
			"w_novelty":  weightNovelty,
			"w_sent":     weightSentiment,
		},
	}
	return confidence, explanation
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
