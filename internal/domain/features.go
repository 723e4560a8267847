package domain

import "strconv"

// ConfidenceFeatures is the normalized input vector of the confidence
// calculator. Every field is clamped to [0,1] on ingress; malformed input
// defaults to a neutral value rather than failing. That tolerance is a
// deliberate boundary contract.
type ConfidenceFeatures struct {
	SourceReliability  float64
	CorroborationCount float64
	ModelProbability   float64
	SentimentStrength  float64
	NoveltyScore       float64
	Coverage           float64
}

// FeaturesFromMap coerces a loosely-typed feature dict supplied by boundary
// collaborators. Absent or non-numeric fields default: sourceReliability to
// 0.5, everything else to 0.
func FeaturesFromMap(raw map[string]any) ConfidenceFeatures {
	return ConfidenceFeatures{
		SourceReliability:  coerce(raw, 0.5, "sourceReliability", "source_reliability"),
		CorroborationCount: coerce(raw, 0, "corroborationCount", "corroboration_count"),
		ModelProbability:   coerce(raw, 0, "modelProbability", "model_prob", "model_probability"),
		SentimentStrength:  coerce(raw, 0, "sentimentStrength", "sentiment_strength"),
		NoveltyScore:       coerce(raw, 0, "noveltyScore", "novelty_score", "novelty"),
		Coverage:           coerce(raw, 0, "coverage"),
	}
}

func coerce(raw map[string]any, fallback float64, keys ...string) float64 {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case bool:
			if v {
				return 1
			}
			return 0
		case string:
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return fallback
}

// ConfidenceExplanation retains every intermediate term of a confidence
// computation plus the weight table, for auditability. Downstream consumers
// inspect these fields; their names are stable.
type ConfidenceExplanation struct {
	RawCombination    float64            `json:"raw_combination"`
	SourceReliability float64            `json:"source_reliability"`
	CorroborationNorm float64            `json:"corroboration_norm"`
	ModelProbability  float64            `json:"model_prob"`
	Coverage          float64            `json:"coverage"`
	Novelty           float64            `json:"novelty"`
	SentimentStrength float64            `json:"sentiment_strength"`
	Weights           map[string]float64 `json:"weights"`
}
